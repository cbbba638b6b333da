package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nasihat/dashboard-api/config"
	"github.com/nasihat/dashboard-api/internal/oauth"
	"github.com/nasihat/dashboard-api/pkg/helpers"
)

// App-level container sharing constructed components across packages.
// Every setter runs exactly once in main before the server accepts
// traffic, so there is no lazy initialization to race on.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	linkedIn   *oauth.LinkedInClient
	rabbitPub  *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetPGPool(p *pgxpool.Pool)            { pgPool = p }
func GetPGPool() *pgxpool.Pool             { return pgPool }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetGCS(s *storage.Client)             { gcsClient = s }
func GetGCS() *storage.Client              { return gcsClient }
func SetES(c *elasticsearch.Client)        { esClient = c }
func GetES() *elasticsearch.Client         { return esClient }
func SetJWT(m *helpers.JWTManager)         { jwtManager = m }
func GetJWT() *helpers.JWTManager          { return jwtManager }
func SetLinkedIn(c *oauth.LinkedInClient)  { linkedIn = c }
func GetLinkedIn() *oauth.LinkedInClient   { return linkedIn }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
