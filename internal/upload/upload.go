package upload

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
)

// Upload is the history record of one accepted file.
type Upload struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Filename  string
	Format    dataset.Format
	RawRows   int
	Rows      int
	Columns   int
	Degraded  bool
	CreatedAt time.Time
}

// Dataset is an ingested file: the table as read and its cleaned form.
type Dataset struct {
	Upload Upload
	Raw    dataset.Table
	Sales  *sales.Table
}
