package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Table names of the identity platform schema read by SQL.
const (
	realmTable              = "realm"
	clientTable             = "client"
	offlineUserSessionTable = "offline_user_session"
	offlineClientTable      = "offline_client_session"
)

// Values of offline_flag distinguishing persisted online sessions from
// offline ones.
const (
	flagOnline  = "0"
	flagOffline = "1"
)

// SQL reads realms, clients and persisted session counts straight from the
// identity platform's database. It never writes.
type SQL struct {
	db    *sql.DB
	owned bool
	sb    squirrel.StatementBuilderType
}

// NormalizeDriver maps accepted driver aliases onto a registered driver name.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported directory driver %q", driver)
	}
}

// OpenSQL opens dsn with driver and verifies the connection.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	name, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", name, err)
	}
	s := NewSQL(db, name)
	s.owned = true
	return s, nil
}

// NewSQL wraps an open database. The caller keeps ownership of db.
func NewSQL(db *sql.DB, driver string) *SQL {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	if driver == DriverPostgres {
		sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return &SQL{db: db, sb: sb}
}

// Close releases the database when SQL opened it.
func (s *SQL) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// GetRealm implements keycloak.RealmProvider.
func (s *SQL) GetRealm(ctx context.Context, id string) (*keycloak.Realm, error) {
	query, args, err := s.sb.Select("id", "name").
		From(realmTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build realm query: %w", err)
	}

	var realm keycloak.Realm
	if err := sqlscan.Get(ctx, s.db, &realm, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("realm %s: %w", id, keycloak.ErrNotFound)
		}
		return nil, fmt.Errorf("query realm %s: %w", id, err)
	}
	return &realm, nil
}

// GetClientByClientID implements keycloak.ClientProvider.
func (s *SQL) GetClientByClientID(ctx context.Context, realm *keycloak.Realm, clientID string) (*keycloak.Client, error) {
	if realm == nil {
		return nil, fmt.Errorf("client %s: %w", clientID, keycloak.ErrNotFound)
	}
	query, args, err := s.sb.Select("id", "client_id", "realm_id").
		From(clientTable).
		Where(squirrel.Eq{"realm_id": realm.ID, "client_id": clientID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build client query: %w", err)
	}

	var client keycloak.Client
	if err := sqlscan.Get(ctx, s.db, &client, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("client %s in realm %s: %w", clientID, realm.ID, keycloak.ErrNotFound)
		}
		return nil, fmt.Errorf("query client %s: %w", clientID, err)
	}
	return &client, nil
}

// ActiveUserSessions implements keycloak.SessionProvider by counting
// persisted online sessions of client.
func (s *SQL) ActiveUserSessions(ctx context.Context, realm *keycloak.Realm, client *keycloak.Client) (int64, error) {
	return s.countSessions(ctx, realm, client, flagOnline)
}

// OfflineSessionsCount implements keycloak.SessionProvider.
func (s *SQL) OfflineSessionsCount(ctx context.Context, realm *keycloak.Realm, client *keycloak.Client) (int64, error) {
	return s.countSessions(ctx, realm, client, flagOffline)
}

func (s *SQL) countSessions(ctx context.Context, realm *keycloak.Realm, client *keycloak.Client, flag string) (int64, error) {
	if realm == nil || client == nil {
		return 0, keycloak.ErrNotFound
	}
	query, args, err := s.sb.Select("COUNT(*)").
		From(offlineClientTable + " cs").
		Join(offlineUserSessionTable + " us ON us.user_session_id = cs.user_session_id AND us.offline_flag = cs.offline_flag").
		Where(squirrel.Eq{
			"cs.client_id":    client.ID,
			"cs.offline_flag": flag,
			"us.realm_id":     realm.ID,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build session count query: %w", err)
	}

	var n int64
	if err := sqlscan.Get(ctx, s.db, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count sessions for client %s: %w", client.ClientID, err)
	}
	return n, nil
}
