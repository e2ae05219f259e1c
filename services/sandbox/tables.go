package sandbox

import (
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/types"
)

// createTables creates the control tables the service itself uses and the
// demo tables user queries run against. Column names and types mirror the
// GORM models so the ORM can read and write them over the wire unchanged.
func createTables(db *memory.Database) {
	usersSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Uint32, Source: "users", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "username", Type: types.Text, Source: "users", Nullable: false},
		{Name: "email", Type: types.Text, Source: "users"},
		{Name: "role", Type: types.Text, Source: "users"},
		{Name: "is_active", Type: types.Boolean, Source: "users"},
		{Name: "created_at", Type: types.Datetime, Source: "users"},
	})
	db.AddTable("users", memory.NewTable(db, "users", usersSchema, db.GetForeignKeyCollection()))

	permsSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Uint32, Source: "role_permissions", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "user_id", Type: types.Uint32, Source: "role_permissions", Nullable: false},
		{Name: "schema_name", Type: types.Text, Source: "role_permissions", Nullable: false},
		{Name: "table_name", Type: types.Text, Source: "role_permissions", Nullable: false},
		{Name: "can_select", Type: types.Boolean, Source: "role_permissions"},
		{Name: "can_insert", Type: types.Boolean, Source: "role_permissions"},
		{Name: "can_update", Type: types.Boolean, Source: "role_permissions"},
		{Name: "can_delete", Type: types.Boolean, Source: "role_permissions"},
		{Name: "row_filter", Type: types.Text, Source: "role_permissions", Nullable: true},
		{Name: "allowed_columns", Type: types.Text, Source: "role_permissions", Nullable: true},
		{Name: "created_at", Type: types.Datetime, Source: "role_permissions"},
		{Name: "updated_at", Type: types.Datetime, Source: "role_permissions"},
	})
	db.AddTable("role_permissions", memory.NewTable(db, "role_permissions", permsSchema, db.GetForeignKeyCollection()))

	historySchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Uint32, Source: "query_history", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "user_id", Type: types.Uint32, Source: "query_history", Nullable: false},
		{Name: "question", Type: types.Text, Source: "query_history", Nullable: true},
		{Name: "generated_sql", Type: types.Text, Source: "query_history"},
		{Name: "status", Type: types.Text, Source: "query_history"},
		{Name: "result_rows", Type: types.Int32, Source: "query_history"},
		{Name: "execution_time_ms", Type: types.Int64, Source: "query_history"},
		{Name: "cached", Type: types.Boolean, Source: "query_history"},
		{Name: "error_message", Type: types.Text, Source: "query_history", Nullable: true},
		{Name: "created_at", Type: types.Datetime, Source: "query_history"},
	})
	db.AddTable("query_history", memory.NewTable(db, "query_history", historySchema, db.GetForeignKeyCollection()))

	savedSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Uint32, Source: "saved_queries", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "user_id", Type: types.Uint32, Source: "saved_queries", Nullable: false},
		{Name: "name", Type: types.Text, Source: "saved_queries", Nullable: false},
		{Name: "description", Type: types.Text, Source: "saved_queries", Nullable: true},
		{Name: "sql_query", Type: types.Text, Source: "saved_queries"},
		{Name: "created_at", Type: types.Datetime, Source: "saved_queries"},
		{Name: "updated_at", Type: types.Datetime, Source: "saved_queries"},
	})
	db.AddTable("saved_queries", memory.NewTable(db, "saved_queries", savedSchema, db.GetForeignKeyCollection()))

	customersSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Int32, Source: "customers", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "name", Type: types.Text, Source: "customers", Nullable: false},
		{Name: "email", Type: types.Text, Source: "customers"},
		{Name: "region", Type: types.Text, Source: "customers"},
		{Name: "tier", Type: types.Text, Source: "customers"},
		{Name: "created_at", Type: types.Datetime, Source: "customers"},
	})
	db.AddTable("customers", memory.NewTable(db, "customers", customersSchema, db.GetForeignKeyCollection()))

	ordersSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Int32, Source: "orders", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "customer_id", Type: types.Int32, Source: "orders", Nullable: false},
		{Name: "region", Type: types.Text, Source: "orders"},
		{Name: "status", Type: types.Text, Source: "orders"},
		{Name: "amount", Type: types.Float64, Source: "orders"},
		{Name: "created_at", Type: types.Datetime, Source: "orders"},
	})
	db.AddTable("orders", memory.NewTable(db, "orders", ordersSchema, db.GetForeignKeyCollection()))

	productsSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "id", Type: types.Int32, Source: "products", Nullable: false, PrimaryKey: true, AutoIncrement: true},
		{Name: "name", Type: types.Text, Source: "products", Nullable: false},
		{Name: "category", Type: types.Text, Source: "products"},
		{Name: "price", Type: types.Float64, Source: "products"},
		{Name: "stock", Type: types.Int32, Source: "products"},
	})
	db.AddTable("products", memory.NewTable(db, "products", productsSchema, db.GetForeignKeyCollection()))
}

// indexStatements declares the unique keys the control tables rely on. The
// permission upsert needs the (user, schema, table) key to take the update
// path instead of inserting duplicates.
func indexStatements() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_users_username ON users (username)",
		"CREATE UNIQUE INDEX idx_perm_user_schema_table ON role_permissions (user_id, schema_name, table_name)",
	}
}
