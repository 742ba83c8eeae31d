package registry

import "errors"

var (
	errEmptyTableName = errors.New("schema definition missing table_name")
	errNoPrimaryKey   = errors.New("schema definition has no primary_key field")
)
