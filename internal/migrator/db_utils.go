package migrator

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/eleven-am/hiretrack/internal/logger"
)

// EnsureDatabaseExists creates the database if it doesn't exist
func EnsureDatabaseExists(dsn string) error {
	dbName, adminDSN, err := parseDSNForDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %w", err)
	}

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer db.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := db.QueryRow(query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if exists {
		return nil
	}

	log := logger.Migration().WithField("database", dbName)
	log.Info("database does not exist, creating")

	createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create database '%s': %w", dbName, err)
	}

	log.Info("database created")
	return nil
}

// parseDSNForDB extracts database name and returns admin DSN
func parseDSNForDB(dsn string) (dbName string, adminDSN string, err error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("invalid database URL format: %w", err)
		}

		dbName = strings.TrimPrefix(u.Path, "/")
		if dbName == "" {
			return "", "", fmt.Errorf("no database name found in URL")
		}

		u.Path = "/postgres"
		return dbName, u.String(), nil
	}

	params := make(map[string]string)
	var keys []string
	for _, kv := range strings.Fields(dsn) {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			if _, seen := params[parts[0]]; !seen {
				keys = append(keys, parts[0])
			}
			params[parts[0]] = parts[1]
		}
	}

	dbName = params["dbname"]
	if dbName == "" {
		return "", "", fmt.Errorf("no database name found in DSN")
	}

	adminParts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "dbname" {
			adminParts = append(adminParts, "dbname=postgres")
		} else {
			adminParts = append(adminParts, fmt.Sprintf("%s=%s", k, params[k]))
		}
	}
	adminDSN = strings.Join(adminParts, " ")

	return dbName, adminDSN, nil
}

// quoteIdentifier quotes a PostgreSQL identifier to prevent SQL injection
func quoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}

// GetDatabaseURL builds a database URL from components
func GetDatabaseURL(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, url.QueryEscape(password), host, port, dbname, sslmode)
}
