// The initialization package contains functions that set up required
// dependencies such as the SQLite database and the task queue.
package initialization

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"errors"
	"time"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/config"
)

// SetupDB creates the database, if it does not yet exist, and applies all
// remaining migrations.
func SetupDB(cfg *config.Configuration, db *sql.DB, folder, dbname string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error().Err(err).Msg("failed to run migrations")
		return err
	}

	return EnsureInstanceActor(db, cfg)
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
	}
	return db, err
}

// InitQueue opens the task queue on its own sqlite handle and installs the
// queue schema.
func InitQueue(cfg *config.Configuration) (*backlite.Client, error) {
	db, err := OpenDB(cfg.DbUrl)
	if err != nil {
		return nil, err
	}

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.QueueWorkers,
		ReleaseAfter:    10 * time.Minute,
		CleanupInterval: time.Hour,
	})
	if err != nil {
		return nil, err
	}

	if err := client.Install(); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureInstanceActor seeds the instance-level actor this server signs and
// delivers as, generating its RSA key pair on first boot.
func EnsureInstanceActor(db *sql.DB, cfg *config.Configuration) error {
	row := db.QueryRow("SELECT EXISTS(SELECT TRUE FROM actors WHERE uri = ?)", cfg.Url.String())
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Info().Msg("inserting instance actor into the database")
	pub, priv, err := GenerateKeysPem(cfg.RsaKeySize)
	if err != nil {
		return err
	}

	inbox := cfg.Url.JoinPath("inbox").String()
	_, err = db.Exec(`INSERT INTO actors(
			id,
			uri,
			username,
			host,
			inbox,
			shared_inbox,
			public_key_pem,
			private_key_pem,
			is_suspended,
			last_fetched_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), cfg.Url.String(), cfg.Name, cfg.Domain,
		inbox, inbox, pub, priv, false, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("insert failed")
	}
	return err
}

// InstancePrivateKey loads the signing key seeded by EnsureInstanceActor.
func InstancePrivateKey(ctx context.Context, db *sql.DB, cfg *config.Configuration) (*rsa.PrivateKey, error) {
	var pemStr string
	err := db.QueryRowContext(ctx,
		"SELECT private_key_pem FROM actors WHERE uri = ?", cfg.Url.String()).Scan(&pemStr)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("instance actor has no private key")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("instance key is not RSA")
	}
	return rsaKey, nil
}

func GenerateKeysPem(size int) (pub string, priv string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, size)
	if err != nil {
		return
	}

	priv, err = privateKeyPem(key)
	if err != nil {
		return
	}

	pub, err = publicKeyPem(&key.PublicKey)
	return
}

func privateKeyPem(key *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	})), nil
}

func publicKeyPem(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})), err
}
