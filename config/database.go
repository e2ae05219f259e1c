package config

import (
	"database/sql"
	"fmt"
	"time"

	"querygateapi/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB is the global GORM database instance used for control tables
// (permissions, history, saved queries, users).
var DB *gorm.DB

// QueryDB is the bounded database/sql pool user queries execute on. Kept
// separate from the GORM connection so pipeline load cannot starve the
// control plane and pool limits apply to user queries only.
var QueryDB *sql.DB

// DSN builds the MySQL connection string for the configured target database.
func DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		Cfg.DBUser,
		Cfg.DBPass,
		Cfg.DBHost,
		Cfg.DBPort,
		Cfg.DBName,
	)
}

// ConnectDB establishes the GORM connection for the control tables.
func ConnectDB() error {
	logger.Infof("Connecting to database %s@%s:%d/%s", Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName)

	db, err := gorm.Open(mysql.Open(DSN()), &gorm.Config{})
	if err != nil {
		logger.Errorf("GORM connection failed: %v", err)
		return err
	}
	logger.Infof("GORM connected successfully to database %s", Cfg.DBName)

	DB = db
	return nil
}

// ConnectQueryPool opens the bounded pool for query execution. Baseline
// connections stay idle and ready; overflow connections are created under
// load up to the hard cap and discarded once idle.
func ConnectQueryPool() error {
	db, err := sql.Open("mysql", DSN())
	if err != nil {
		logger.Errorf("Query pool open failed: %v", err)
		return err
	}

	db.SetMaxOpenConns(Cfg.PoolSize + Cfg.MaxOverflow)
	db.SetMaxIdleConns(Cfg.PoolSize)
	db.SetConnMaxIdleTime(5 * time.Minute)

	QueryDB = db
	logger.Infof("Query pool ready - %d baseline, %d overflow", Cfg.PoolSize, Cfg.MaxOverflow)
	return nil
}
