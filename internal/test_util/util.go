package test_util

import (
	"io"
	"net"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// GetDBConnection opens a silent sqlite connection for tests
func GetDBConnection(dbFile string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	return db, err
}

// Migrate runs auto migration for model
func Migrate(db *gorm.DB, model interface{}) error {
	return db.AutoMigrate(model)
}

// ListenTCP starts a loopback listener that writes banner to every accepted
// connection and returns the listening port. The listener is closed when the
// test finishes.
func ListenTCP(t *testing.T, banner string) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		t.Fatalf("failed to start test listener: %s", err)
	}

	t.Cleanup(func() {
		ln.Close()
	})

	go func() {
		for {
			conn, err := ln.Accept()

			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if banner != "" {
					if _, err := c.Write([]byte(banner)); err != nil {
						return
					}
				}

				// hold the connection until the client hangs up
				c.SetReadDeadline(time.Now().Add(5 * time.Second))
				io.Copy(io.Discard, c)
			}(conn)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

// ClosedPort returns a loopback port with nothing listening on it
func ClosedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		t.Fatalf("failed to reserve test port: %s", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port

	ln.Close()

	return port
}

// PipeConn returns the client side of an in-memory connection whose server
// side writes banner immediately and then waits for the client to close
func PipeConn(banner string) net.Conn {
	client, server := net.Pipe()

	go func() {
		defer server.Close()

		if banner != "" {
			if _, err := server.Write([]byte(banner)); err != nil {
				return
			}
		}

		io.Copy(io.Discard, server)
	}()

	return client
}
