package dto

type UpdateValueRequest struct {
	TableName  string `json:"table_name"`
	ColumnName string `json:"column_name"`
	NewValue   string `json:"new_value"`
	ID         int64  `json:"id"`
}

type DeleteRowRequest struct {
	TableName string `json:"table_name"`
	ID        int64  `json:"id"`
}

type InsertRowRequest struct {
	TableName string   `json:"table_name"`
	Columns   []string `json:"columns"`
	Values    []string `json:"values"`
}

type BackupRequest struct {
	BackupName string `json:"backup_name"`
}

type BackupResponse struct {
	Message    string `json:"message"`
	BackupName string `json:"backup_name"`
}

type BackupListResponse struct {
	Backups []string `json:"backups"`
}
