// This file is a helper for running tests against real database containers.
// It is used by the integration tests and by the standalone testcontainers
// executable. Expects environment variables to be loaded from .env files.

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localmart/shopdata/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainers holds the backing database container for a test session.
type TestContainers struct {
	Network     *testcontainers.DockerNetwork
	DBContainer testcontainers.Container

	// Mapped connection details for the host side.
	DBHost     string
	DBPort     nat.Port
	DBDatabase string
	DBUser     string
	DBPassword string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database container: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateDBContainer starts a MariaDB/MySQL container, creates a uniquely
// named database for this session and applies the embedded DDL. Connection
// details are returned in the TestContainers.
func CreateDBContainer(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	dbImage := envOr("DB_IMAGE", "mariadb:11")
	rootPassword := envOr("DB_ROOT_PASSWORD", "rootpass")

	// Names must match the privileges DDL; the container is per-session
	// isolation.
	testContainers.DBDatabase = "shopdata"
	testContainers.DBUser = "shopdata"
	testContainers.DBPassword = "shopdata"

	if err := ensureImage(ctx, t, dbImage); err != nil {
		exitWithError(t, err, "Failed to ensure database image")
	}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw

	tcpDbPort, err := nat.NewPort("tcp", envOr("DB_PORT", "3306"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": rootPassword,
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start database")
	}
	testContainers.DBContainer = dbContainer

	testContainers.DBHost, _ = dbContainer.Host(ctx)
	testContainers.DBPort, _ = dbContainer.MappedPort(ctx, tcpDbPort)

	if err := performDBInit(t, testContainers, rootPassword); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
	}

	logMessage(t, "DB_HOST=%s DB_PORT=%s DB_DATABASE=%s", testContainers.DBHost, testContainers.DBPort.Port(), testContainers.DBDatabase)
	return testContainers, nil
}

// performDBInit creates the session database, the application user and the
// schema from the embedded DDL.
func performDBInit(t *testing.T, tc *TestContainers, rootPassword string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword, tc.DBHost, tc.DBPort.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect for setup: %w", err)
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", tc.DBDatabase)); err != nil {
		return fmt.Errorf("failed to create %s: %w", tc.DBDatabase, err)
	}
	if _, err := db.Exec(fmt.Sprintf("USE %s", tc.DBDatabase)); err != nil {
		return fmt.Errorf("failed to select %s: %w", tc.DBDatabase, err)
	}
	if err := executeSQL(db, data.InitdbMariaDBTables); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	if err := executeSQL(db, data.InitdbMariaDBPrivileges); err != nil {
		return fmt.Errorf("failed to execute privileges init sql: %w", err)
	}

	return nil
}

// executeSQL runs a multi-statement DDL script one statement at a time.
// Full-line comments are dropped before splitting; the scripts in data/
// never use inline comments or literal semicolons.
func executeSQL(db *sql.DB, script string) error {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("statement %q: %w", stmt, err)
		}
	}
	return nil
}

// ensureImage pulls the image if the local daemon does not already have it.
func ensureImage(ctx context.Context, t *testing.T, imageName string) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w", err)
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return nil
			}
		}
	}

	logMessage(t, "Image %s not present, pulling...", imageName)
	reader, err := cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	buf := make([]byte, 4096)
	for {
		if _, err := reader.Read(buf); err != nil {
			break
		}
	}
	return nil
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// logMessage logs via the test when available, stdout otherwise (the
// standalone testcontainers executable passes a nil *testing.T).
func logMessage(t *testing.T, format string, args ...interface{}) {
	if t != nil {
		t.Logf(format, args...)
		return
	}
	fmt.Printf(format+"\n", args...)
}

func exitWithError(t *testing.T, err error, message string) {
	if t != nil {
		t.Fatalf("%s: %v", message, err)
		return
	}
	fmt.Printf("%s: %v\n", message, err)
	os.Exit(1)
}
