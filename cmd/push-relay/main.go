package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/cleanup"
	"github.com/lalternative/push-relay/config"
	"github.com/lalternative/push-relay/db"
	"github.com/lalternative/push-relay/firebaseprovider"
	"github.com/lalternative/push-relay/metric"
	"github.com/lalternative/push-relay/push"
	"github.com/lalternative/push-relay/redisprovider"
	"github.com/lalternative/push-relay/repo/tokenrepo"
	"github.com/lalternative/push-relay/scheduler"
	"github.com/lalternative/push-relay/sender"
	"github.com/lalternative/push-relay/sender/provider/fcm"
)

var log = logger.NewNamed("main")

var (
	flagConfigFile = flag.String("c", "etc/push-relay.yml", "path to config file")
	flagVersion    = flag.Bool("v", false, "show version and exit")
	flagHelp       = flag.Bool("h", false, "show help and exit")
)

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Println(app.AppName)
		fmt.Println(app.Version())
		fmt.Println(app.VersionDescription())
		return
	}
	if *flagHelp {
		flag.PrintDefaults()
		return
	}

	ctx := context.Background()
	a := new(app.App)

	conf, err := config.NewFromFile(*flagConfigFile)
	if err != nil {
		log.Fatal("can't open config file", zap.Error(err))
	}
	conf.Log.ApplyGlobal()

	a.Register(conf)
	Bootstrap(a, conf)

	if err = a.Start(ctx); err != nil {
		log.Fatal("can't start app", zap.Error(err))
	}
	log.Info("app started", zap.String("version", a.Version()))

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-exit
	log.Info("received exit signal, stop app...", zap.String("signal", fmt.Sprint(sig)))

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err = a.Close(ctx); err != nil {
		log.Fatal("close error", zap.Error(err))
	}
	log.Info("goodbye!")
}

func Bootstrap(a *app.App, conf *config.Config) {
	a.Register(metric.New()).
		Register(firebaseprovider.New())
	if conf.TokenStore.Backend == tokenrepo.BackendMongo {
		a.Register(db.New())
	}
	if conf.Schedule.Durable {
		a.Register(redisprovider.New())
	}
	a.Register(tokenrepo.New()).
		Register(sender.New()).
		Register(fcm.New())
	if conf.Schedule.Durable {
		a.Register(scheduler.NewDurable())
	} else {
		a.Register(scheduler.New())
	}
	a.Register(push.New()).
		Register(cleanup.New())
}
