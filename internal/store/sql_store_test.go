package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evyataryagoni/iplocator/internal/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a mock MySQL database for testing
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

// setupMockPostgres creates a mock PostgreSQL database for testing
func setupMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		Conn: sqlDB,
	})

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

// TestSQLStore_FindByIP_Success tests successful lookup
func TestSQLStore_FindByIP_Success(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	// GORM adds LIMIT 1 to First() queries, so we expect 2 args: ip and limit
	rows := sqlmock.NewRows([]string{"ip", "location"}).
		AddRow("8.8.8.8", "Mountain View, California, US")

	mock.ExpectQuery("SELECT \\* FROM `ip_records` WHERE ip = \\? .*").
		WithArgs("8.8.8.8", 1).
		WillReturnRows(rows)

	record, err := store.FindByIP(context.Background(), "8.8.8.8")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.IP != "8.8.8.8" {
		t.Errorf("expected IP '8.8.8.8', got '%s'", record.IP)
	}
	if record.Location != "Mountain View, California, US" {
		t.Errorf("expected 'Mountain View, California, US', got '%s'", record.Location)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestSQLStore_FindByIP_NotFound tests an empty result set
func TestSQLStore_FindByIP_NotFound(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	mock.ExpectQuery("SELECT \\* FROM `ip_records` WHERE ip = \\? .*").
		WithArgs("192.168.1.1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"ip", "location"}))

	record, err := store.FindByIP(context.Background(), "192.168.1.1")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if record != nil {
		t.Error("expected nil record, got data")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestSQLStore_FindByIP_DatabaseError tests database errors are wrapped, not masked
func TestSQLStore_FindByIP_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	mock.ExpectQuery("SELECT \\* FROM `ip_records` WHERE ip = \\? .*").
		WithArgs("8.8.8.8", 1).
		WillReturnError(sql.ErrConnDone)

	record, err := store.FindByIP(context.Background(), "8.8.8.8")

	if err == nil {
		t.Fatal("expected database error, got nil")
	}
	if record != nil {
		t.Error("expected nil record, got data")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("expected database error, got not found error")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped sql.ErrConnDone, got %v", err)
	}

	mock.ExpectationsWereMet()
}

// TestSQLStore_FindByIP_OpaqueText tests that non-IP text is queried unchanged
func TestSQLStore_FindByIP_OpaqueText(t *testing.T) {
	inputs := []string{
		"not-an-ip",
		"300.300.300.300",
		" 8.8.8.8 ",
		"2001:4860:4860::8888",
	}

	for _, ip := range inputs {
		t.Run(ip, func(t *testing.T) {
			db, mock, sqlDB := setupMockDB(t)
			defer sqlDB.Close()

			store := &SQLStore{db: db}

			rows := sqlmock.NewRows([]string{"ip", "location"}).
				AddRow(ip, models.UnknownLocation)

			mock.ExpectQuery("SELECT \\* FROM `ip_records` WHERE ip = \\? .*").
				WithArgs(ip, 1).
				WillReturnRows(rows)

			record, err := store.FindByIP(context.Background(), ip)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if record.IP != ip {
				t.Errorf("expected IP '%s', got '%s'", ip, record.IP)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

// TestSQLStore_Insert_Success tests a single insert without an explicit transaction
func TestSQLStore_Insert_Success(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	mock.ExpectExec("INSERT INTO `ip_records`").
		WithArgs("8.8.8.8", "Mountain View, California, US").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Insert(context.Background(), &models.LocationRecord{
		IP:       "8.8.8.8",
		Location: "Mountain View, California, US",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestSQLStore_Insert_Duplicate tests that a unique violation becomes ErrDuplicate
func TestSQLStore_Insert_Duplicate(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	mock.ExpectExec("INSERT INTO `ip_records`").
		WithArgs("8.8.8.8", models.UnknownLocation).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '8.8.8.8' for key 'PRIMARY'"})

	err := store.Insert(context.Background(), &models.LocationRecord{
		IP:       "8.8.8.8",
		Location: models.UnknownLocation,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	mock.ExpectationsWereMet()
}

// TestSQLStore_Insert_DatabaseError tests other insert failures
func TestSQLStore_Insert_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	mock.ExpectExec("INSERT INTO `ip_records`").
		WillReturnError(sql.ErrConnDone)

	err := store.Insert(context.Background(), &models.LocationRecord{IP: "1.1.1.1", Location: "x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrDuplicate) {
		t.Error("expected plain database error, got ErrDuplicate")
	}

	mock.ExpectationsWereMet()
}

// TestSQLStore_Postgres_FindByIP tests the postgres dialect query shape
func TestSQLStore_Postgres_FindByIP(t *testing.T) {
	db, mock, sqlDB := setupMockPostgres(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	rows := sqlmock.NewRows([]string{"ip", "location"}).
		AddRow("1.1.1.1", "Brisbane, Queensland, AU")

	mock.ExpectQuery(`SELECT \* FROM "ip_records" WHERE ip = \$1 .*`).
		WithArgs("1.1.1.1", 1).
		WillReturnRows(rows)

	record, err := store.FindByIP(context.Background(), "1.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Location != "Brisbane, Queensland, AU" {
		t.Errorf("expected 'Brisbane, Queensland, AU', got '%s'", record.Location)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestSQLStore_Close tests cleanup
func TestSQLStore_Close(t *testing.T) {
	db, mock, _ := setupMockDB(t)

	store := &SQLStore{db: db}

	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("unexpected error on close: %v", err)
	}

	mock.ExpectationsWereMet()
}

// TestSQLStore_Close_NilDB tests close with nil db
func TestSQLStore_Close_NilDB(t *testing.T) {
	store := &SQLStore{db: nil}

	if err := store.Close(); err != nil {
		t.Errorf("expected no error for nil db, got: %v", err)
	}
}

// TestLocationRecordModel_TableName tests GORM table name override
func TestLocationRecordModel_TableName(t *testing.T) {
	if name := (LocationRecordModel{}).TableName(); name != "ip_records" {
		t.Errorf("expected table name 'ip_records', got '%s'", name)
	}
}

// TestSQLConfig_DSN_Postgres tests that the postgres DSN parses back to the configured values
func TestSQLConfig_DSN_Postgres(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SQLConfig
		sslMode string
	}{
		{
			name: "default sslmode",
			cfg: SQLConfig{
				Driver: "postgres", User: "postgres", Password: "secret",
				Host: "db", Port: 5432, Database: "bar",
			},
			sslMode: "require",
		},
		{
			name: "empty password",
			cfg: SQLConfig{
				Driver: "postgres", User: "postgres", Password: "",
				Host: "localhost", Port: 5432, Database: "bar", SSLMode: "disable",
			},
			sslMode: "disable",
		},
		{
			name: "password with space",
			cfg: SQLConfig{
				Driver: "postgres", User: "postgres", Password: "my secret",
				Host: "localhost", Port: 5432, Database: "bar", SSLMode: "disable",
			},
			sslMode: "disable",
		},
		{
			name: "password with url metacharacters",
			cfg: SQLConfig{
				Driver: "postgres", User: "app user", Password: "p@ss:w/rd?#",
				Host: "localhost", Port: 5433, Database: "iplocator", SSLMode: "disable",
			},
			sslMode: "disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.cfg.DSN()
			if !strings.HasSuffix(dsn, "sslmode="+tt.sslMode) {
				t.Errorf("expected sslmode=%s in %q", tt.sslMode, dsn)
			}

			parsed, err := pgconn.ParseConfig(dsn)
			if err != nil {
				t.Fatalf("failed to parse DSN %q: %v", dsn, err)
			}
			if parsed.User != tt.cfg.User {
				t.Errorf("expected user %q, got %q", tt.cfg.User, parsed.User)
			}
			if parsed.Password != tt.cfg.Password {
				t.Errorf("expected password %q, got %q", tt.cfg.Password, parsed.Password)
			}
			if parsed.Database != tt.cfg.Database {
				t.Errorf("expected database %q, got %q", tt.cfg.Database, parsed.Database)
			}
			if parsed.Host != tt.cfg.Host || int(parsed.Port) != tt.cfg.Port {
				t.Errorf("expected %s:%d, got %s:%d", tt.cfg.Host, tt.cfg.Port, parsed.Host, parsed.Port)
			}
		})
	}
}

// TestSQLConfig_DSN_MySQL tests that the mysql DSN parses back to the configured values
func TestSQLConfig_DSN_MySQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  SQLConfig
	}{
		{"plain", SQLConfig{Driver: "mysql", User: "root", Password: "pw", Host: "localhost", Port: 3306, Database: "bar"}},
		{"empty password", SQLConfig{Driver: "mysql", User: "root", Password: "", Host: "db", Port: 3306, Database: "bar"}},
		{"password with separators", SQLConfig{Driver: "mysql", User: "root", Password: "a b@c/d", Host: "db", Port: 3307, Database: "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := mysqldriver.ParseDSN(tt.cfg.DSN())
			if err != nil {
				t.Fatalf("failed to parse DSN %q: %v", tt.cfg.DSN(), err)
			}
			if parsed.User != tt.cfg.User || parsed.Passwd != tt.cfg.Password {
				t.Errorf("expected %s/%s, got %s/%s", tt.cfg.User, tt.cfg.Password, parsed.User, parsed.Passwd)
			}
			if parsed.DBName != tt.cfg.Database {
				t.Errorf("expected database %q, got %q", tt.cfg.Database, parsed.DBName)
			}
			if parsed.Net != "tcp" || parsed.Addr != fmt.Sprintf("%s:%d", tt.cfg.Host, tt.cfg.Port) {
				t.Errorf("unexpected address %s(%s)", parsed.Net, parsed.Addr)
			}
			if !parsed.ParseTime {
				t.Error("expected parseTime=true")
			}
		})
	}
}

// TestSQLStore_Postgres_Insert_Duplicate tests that a postgres unique violation becomes ErrDuplicate
func TestSQLStore_Postgres_Insert_Duplicate(t *testing.T) {
	db, mock, sqlDB := setupMockPostgres(t)
	defer sqlDB.Close()

	store := &SQLStore{db: db}

	mock.ExpectExec(`INSERT INTO "ip_records"`).
		WithArgs("8.8.8.8", models.UnknownLocation).
		WillReturnError(&pgconn.PgError{
			Code:    "23505",
			Message: `duplicate key value violates unique constraint "ip_records_pkey"`,
		})

	err := store.Insert(context.Background(), &models.LocationRecord{
		IP:       "8.8.8.8",
		Location: models.UnknownLocation,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestNewSQLStore_PingFailureClosesPool tests that a failed ping does not leak the pool
func TestNewSQLStore_PingFailureClosesPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	_, err = newSQLStore(postgres.New(postgres.Config{Conn: sqlDB}))
	if err == nil {
		t.Fatal("expected ping error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to ping database") {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expected the pool to be closed: %v", err)
	}
}

// TestNewSQLStore_UnknownDriver tests driver validation
func TestNewSQLStore_UnknownDriver(t *testing.T) {
	_, err := NewSQLStore(SQLConfig{Driver: "oracle"})
	if err == nil {
		t.Error("expected error for unknown driver")
	}
}
