package catalog

import "time"

// Record is one stored layer. Payload holds the layer as JSON including its type.
type Record struct {
	ID        string    `gorm:"column:id;primaryKey;size:128"`
	Type      string    `gorm:"column:type;size:32;not null"`
	Position  int       `gorm:"column:position;not null;index"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name used by Record.
func (Record) TableName() string {
	return "layers"
}

// Columns lists the columns a catalog table must have.
var Columns = []string{"id", "type", "position", "payload", "updated_at"}
