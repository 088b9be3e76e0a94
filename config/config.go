package config

import (
	"os"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"gopkg.in/yaml.v3"

	"github.com/lalternative/push-relay/cleanup"
	"github.com/lalternative/push-relay/db"
	"github.com/lalternative/push-relay/firebaseprovider"
	"github.com/lalternative/push-relay/push"
	"github.com/lalternative/push-relay/redisprovider"
	"github.com/lalternative/push-relay/repo/tokenrepo"
	"github.com/lalternative/push-relay/scheduler"
)

const CName = "config"

func NewFromFile(path string) (c *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (c *Config, err error) {
	c = &Config{}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return
}

type Config struct {
	Log        logger.Config           `yaml:"log"`
	HTTP       push.Config             `yaml:"http"`
	Firebase   firebaseprovider.Config `yaml:"firebase"`
	TokenStore tokenrepo.Config        `yaml:"tokenStore"`
	Mongo      db.Mongo                `yaml:"mongo"`
	Redis      redisprovider.Config    `yaml:"redis"`
	Schedule   scheduler.Config        `yaml:"schedule"`
	Cleanup    cleanup.Config          `yaml:"cleanup"`
}

func (c *Config) Init(a *app.App) (err error) {
	return nil
}

func (c *Config) Name() (name string) {
	return CName
}

func (c *Config) GetHTTP() push.Config {
	return c.HTTP
}

func (c *Config) GetFirebase() firebaseprovider.Config {
	return c.Firebase
}

func (c *Config) GetTokenStore() tokenrepo.Config {
	return c.TokenStore
}

func (c *Config) GetMongo() db.Mongo {
	return c.Mongo
}

func (c *Config) GetRedis() redisprovider.Config {
	return c.Redis
}

func (c *Config) GetSchedule() scheduler.Config {
	return c.Schedule
}

func (c *Config) GetCleanup() cleanup.Config {
	return c.Cleanup
}
