package firebaseprovider

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/messaging"
	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const CName = "push.firebase"

var log = logger.NewNamed(CName)

type configSource interface {
	GetFirebase() Config
}

type Config struct {
	CredentialsFile string `yaml:"credentialsFile"`
	DatabaseURL     string `yaml:"databaseURL"`
	ProjectId       string `yaml:"projectId"`
}

func New() FirebaseProvider {
	return new(firebaseProvider)
}

// FirebaseProvider owns the single firebase app of the process.
type FirebaseProvider interface {
	Messaging(ctx context.Context) (*messaging.Client, error)
	Database(ctx context.Context) (*db.Client, error)
	app.Component
}

type firebaseProvider struct {
	fbApp *firebase.App
}

func (f *firebaseProvider) Init(a *app.App) (err error) {
	conf := a.MustComponent("config").(configSource).GetFirebase()
	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}
	fbConf := &firebase.Config{
		DatabaseURL: conf.DatabaseURL,
		ProjectID:   conf.ProjectId,
	}
	if f.fbApp, err = firebase.NewApp(context.Background(), fbConf, opts...); err != nil {
		return fmt.Errorf("init firebase app: %w", err)
	}
	log.Info("firebase app initialized", zap.String("project", conf.ProjectId), zap.Bool("database", conf.DatabaseURL != ""))
	return nil
}

func (f *firebaseProvider) Name() (name string) {
	return CName
}

func (f *firebaseProvider) Messaging(ctx context.Context) (*messaging.Client, error) {
	return f.fbApp.Messaging(ctx)
}

func (f *firebaseProvider) Database(ctx context.Context) (*db.Client, error) {
	return f.fbApp.Database(ctx)
}
