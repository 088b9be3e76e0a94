//go:generate mockgen -destination mock_tokenrepo/mock_tokenrepo.go github.com/lalternative/push-relay/repo/tokenrepo TokenRepo

package tokenrepo

import (
	"context"
	"fmt"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/db"
	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/firebaseprovider"
)

const CName = "push.tokenrepo"

var log = logger.NewNamed(CName)

const (
	BackendRTDB  = "rtdb"
	BackendMongo = "mongo"
)

type configSource interface {
	GetTokenStore() Config
}

type Config struct {
	Backend string `yaml:"backend"`
}

func New() TokenRepo {
	return new(tokenRepo)
}

// TokenRepo gives access to the per-user push token records.
type TokenRepo interface {
	// GetToken returns domain.ErrTokenNotFound when the user has no token.
	GetToken(ctx context.Context, userId string) (rec domain.TokenRecord, err error)
	// ListAll calls fn for every user holding a token until fn returns an error.
	ListAll(ctx context.Context, fn func(userId string, rec domain.TokenRecord) error) (err error)
	// DeleteToken removes the whole token record, domain.ErrTokenNotFound if there was none.
	DeleteToken(ctx context.Context, userId string) (err error)
	app.ComponentRunnable
}

type store interface {
	get(ctx context.Context, userId string) (domain.TokenRecord, error)
	list(ctx context.Context, fn func(userId string, rec domain.TokenRecord) error) error
	remove(ctx context.Context, userId string) error
}

type tokenRepo struct {
	store   store
	backend string
}

func (r *tokenRepo) Init(a *app.App) (err error) {
	r.backend = a.MustComponent("config").(configSource).GetTokenStore().Backend
	switch r.backend {
	case "", BackendRTDB:
		r.backend = BackendRTDB
		fb := a.MustComponent(firebaseprovider.CName).(firebaseprovider.FirebaseProvider)
		client, err := fb.Database(context.Background())
		if err != nil {
			return fmt.Errorf("init realtime database client: %w", err)
		}
		r.store = &rtdbStore{client: client}
	case BackendMongo:
		r.store = &mongoStore{coll: a.MustComponent(db.CName).(db.Database).Db().Collection(collName)}
	default:
		return fmt.Errorf("unknown token store backend %q", r.backend)
	}
	return nil
}

func (r *tokenRepo) Name() (name string) {
	return CName
}

func (r *tokenRepo) Run(ctx context.Context) error {
	log.Info("token store ready", zap.String("backend", r.backend))
	return nil
}

func (r *tokenRepo) GetToken(ctx context.Context, userId string) (rec domain.TokenRecord, err error) {
	return r.store.get(ctx, userId)
}

func (r *tokenRepo) ListAll(ctx context.Context, fn func(userId string, rec domain.TokenRecord) error) (err error) {
	return r.store.list(ctx, fn)
}

func (r *tokenRepo) DeleteToken(ctx context.Context, userId string) (err error) {
	return r.store.remove(ctx, userId)
}

func (r *tokenRepo) Close(ctx context.Context) (err error) {
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
