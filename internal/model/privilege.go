package model

// Privilege is a permission code checked by route middleware.
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "stock:out"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivItemCreate      = "item:create"
	PrivItemUpdate      = "item:update"
	PrivStockIn         = "stock:in"
	PrivStockOut        = "stock:out"
	PrivTransactionView = "transaction:view"
	PrivReportView      = "report:view"
	PrivStaffManage     = "staff:manage"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivItemCreate, Name: "Register Item"},
	{Code: PrivItemUpdate, Name: "Edit Item"},
	{Code: PrivStockIn, Name: "Record Stock-In"},
	{Code: PrivStockOut, Name: "Record Stock-Out"},
	{Code: PrivTransactionView, Name: "View Stock Log"},
	{Code: PrivReportView, Name: "View Reports"},
	{Code: PrivStaffManage, Name: "Manage Staff"},
}

// StaffRolePrivileges are the codes the STAFF role receives; MASTER_ADMIN gets all.
var StaffRolePrivileges = []string{
	PrivItemCreate,
	PrivItemUpdate,
	PrivStockIn,
	PrivStockOut,
	PrivTransactionView,
	PrivReportView,
}
