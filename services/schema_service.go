package services

import (
	"context"
	"fmt"

	"querygateapi/config"
	"querygateapi/services/schema"
)

// SchemaService serves table metadata for the browse endpoints out of the
// schema cache tier.
type SchemaService interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (*schema.Table, error)
}

type schemaService struct {
	src           schema.Source
	defaultSchema string
}

// NewSchemaService creates a new schema service over the given source.
func NewSchemaService(src schema.Source) SchemaService {
	return &schemaService{
		src:           src,
		defaultSchema: config.Cfg.DBName,
	}
}

func (s *schemaService) ListTables(ctx context.Context) ([]string, error) {
	return s.src.Tables(ctx, s.defaultSchema)
}

func (s *schemaService) DescribeTable(ctx context.Context, table string) (*schema.Table, error) {
	tbl, err := s.src.Describe(ctx, s.defaultSchema, table)
	if err != nil {
		return nil, err
	}
	if len(tbl.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found in schema %s", table, s.defaultSchema)
	}
	return tbl, nil
}
