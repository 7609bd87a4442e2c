package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:view"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivProductManage     = "product:manage"
	PrivCategoryManage    = "category:manage"
	PrivPurchaseCreate    = "purchase:create"
	PrivPurchaseView      = "purchase:view"
	PrivSaleCreate        = "sale:create"
	PrivSaleView          = "sale:view"
	PrivOrderView         = "order:view"
	PrivOrderUpdateStatus = "order:update_status"
	PrivReportView        = "report:view"
	PrivDashboardView     = "dashboard:view"
)

var DefaultPrivileges = []Privilege{
	// Catalog
	{Code: PrivProductManage, Name: "Manage Products"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	// Ledgers
	{Code: PrivPurchaseCreate, Name: "Record Purchase"},
	{Code: PrivPurchaseView, Name: "View Purchases"},
	{Code: PrivSaleCreate, Name: "Record Sale"},
	{Code: PrivSaleView, Name: "View Sales"},
	// Orders
	{Code: PrivOrderView, Name: "View Orders"},
	{Code: PrivOrderUpdateStatus, Name: "Update Order Status"},
	// Reports
	{Code: PrivReportView, Name: "View Reports"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}
