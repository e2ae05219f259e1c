// Package sandbox runs an embedded MySQL-compatible server seeded with a
// demo dataset so the whole service can run self-contained: the control
// tables, the demo schema and the query pool all live in one in-memory
// database reachable over a real wire connection.
package sandbox

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	"github.com/dolthub/go-mysql-server/sql"

	"querygateapi/pkg/logger"
)

// Sandbox is a running embedded MySQL server. Connections made through DSN
// land on the seeded in-memory database.
type Sandbox struct {
	Server   *server.Server
	Engine   *sqle.Engine
	Provider *memory.DbProvider
	Port     int

	dbName string
	cancel context.CancelFunc
}

// Start brings up an embedded server on a free port, creates the control and
// demo tables in dbName and seeds the demo rows. The server is ready for
// client connections when Start returns.
func Start(ctx context.Context, dbName string) (*Sandbox, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to get free port: %w", err)
	}

	db := memory.NewDatabase(dbName)
	provider := memory.NewDBProvider(db)
	engine := sqle.NewDefault(provider)

	sb := &Sandbox{
		Engine:   engine,
		Provider: provider,
		Port:     port,
		dbName:   dbName,
	}

	createTables(db)
	if err := sb.exec(indexStatements()...); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := sb.exec(seedStatements()...); err != nil {
		return nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	config := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("localhost:%d", port),
	}

	s, err := server.NewServer(config, engine, sql.NewContext, memory.NewSessionBuilder(provider), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	sb.Server = s

	serverCtx, cancel := context.WithCancel(ctx)
	sb.cancel = cancel

	go func() {
		if err := s.Start(); err != nil {
			logger.Errorf("Sandbox server error: %v", err)
		}
	}()

	go func() {
		<-serverCtx.Done()
		if err := s.Close(); err != nil {
			logger.Warnf("Failed to close sandbox server: %v", err)
		}
	}()

	// Poll server readiness with timeout to prevent indefinite blocking
	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readyCancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-readyCtx.Done():
			cancel()
			return nil, fmt.Errorf("sandbox server failed to start within timeout: %w", readyCtx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 100*time.Millisecond)
			if err == nil {
				conn.Close()
				logger.Infof("Sandbox MySQL server listening on port %d, database %s", port, dbName)
				return sb, nil
			}
		}
	}
}

// Close shuts down the embedded server.
func (s *Sandbox) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.Server.Close(); err != nil {
		return fmt.Errorf("failed to close sandbox server: %w", err)
	}
	logger.Infof("Closed sandbox MySQL server on port %d", s.Port)
	return nil
}

// DSN returns a connection string for the sandbox database.
func (s *Sandbox) DSN() string {
	return fmt.Sprintf("root:@tcp(localhost:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", s.Port, s.dbName)
}

// exec runs statements against the engine directly, without a wire
// connection. Iterators are drained because DML applies during iteration.
func (s *Sandbox) exec(statements ...string) error {
	session := memory.NewSession(sql.NewBaseSession(), s.Provider)
	ctx := sql.NewContext(context.Background(), sql.WithSession(session))
	ctx.SetCurrentDatabase(s.dbName)

	for _, stmt := range statements {
		_, iter, _, err := s.Engine.Query(ctx, stmt)
		if err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
		for {
			if _, err := iter.Next(ctx); err == io.EOF {
				break
			} else if err != nil {
				iter.Close(ctx)
				return fmt.Errorf("statement failed: %w", err)
			}
		}
		if err := iter.Close(ctx); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

// freePort finds an available TCP port.
func freePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
