package database

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ecommerce-api/internal/core/logger"
	"ecommerce-api/internal/feature/product"
	"ecommerce-api/internal/feature/user"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver             string
	DSN                string
	Host               string
	Port               int
	Username           string
	Password           string
	Name               string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	SlowThresholdMs    int
	Logger             *zap.Logger
}

func NewGorm(o Opts) (*gorm.DB, error) {
	dial, err := dialector(o)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         newGormLogger(o.Logger, o.LogLevel, o.SlowThresholdMs),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	db = db.Session(&gorm.Session{
		PrepareStmt:            true, // 预编译缓存
		SkipDefaultTransaction: true, // 单语句不开事务
	})
	return db, nil
}

// AutoMigrate 建 users / products 表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.UserModel{}, &product.ProductModel{})
}

func dialector(o Opts) (gorm.Dialector, error) {
	switch o.Driver {
	case "mysql", "":
		dsn := o.DSN
		if strings.TrimSpace(dsn) == "" {
			dsn = BuildMySQLDSN(o.Host, o.Port, o.Username, o.Password, o.Name)
		} else {
			dsn = normalizeMySQLDSN(dsn, o.Username, o.Password)
		}
		if o.Logger != nil {
			o.Logger.Debug("mysql dsn", zap.String("dsn", maskDSN(dsn)))
		}
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(o.DSN), nil
	case "sqlite":
		dsn := o.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

// BuildMySQLDSN 由 DB_HOST/DB_USER/DB_PASSWORD/DB_NAME 拼 go-sql-driver DSN
func BuildMySQLDSN(host string, port int, username, password, name string) string {
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 {
		port = 3306
	}
	c := gomysql.NewConfig()
	c.User = username
	c.Passwd = password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	c.DBName = name
	c.ParseTime = true
	c.ClientFoundRows = true // UPDATE 返回命中行数而非变更行数
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimSpace(input)

	// jdbc:mysql://... → mysql://...
	in = strings.TrimPrefix(in, "jdbc:")
	// 已是 go-sql-driver 语法（user:pass@tcp(...)）则原样返回
	if !strings.HasPrefix(in, "mysql://") {
		return in
	}

	u, err := url.Parse(in)
	if err != nil {
		return in // 交给驱动报错
	}

	c := gomysql.NewConfig()
	c.Net = "tcp"
	c.Addr = u.Host
	if u.Port() == "" {
		c.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	c.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		c.User = u.User.Username()
		c.Passwd, _ = u.User.Password()
	}

	q := u.Query()
	if v := q.Get("user"); v != "" {
		c.User = v
	}
	if v := q.Get("password"); v != "" {
		c.Passwd = v
	}
	if userOverride != "" {
		c.User = userOverride
	}
	if passOverride != "" {
		c.Passwd = passOverride
	}
	// JDBC 专用参数，go-sql-driver 不识别
	for _, k := range []string{"user", "password", "useUnicode", "zeroDateTimeBehavior", "characterEncoding", "useSSL", "serverTimezone"} {
		q.Del(k)
	}

	c.ParseTime = true
	c.ClientFoundRows = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	for k := range q {
		c.Params[k] = q.Get(k)
	}
	return c.FormatDSN()
}

func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at <= 0 {
		return dsn
	}
	if colon := strings.Index(dsn[:at], ":"); colon > 0 {
		return dsn[:colon+1] + "****" + dsn[at:]
	}
	return dsn
}

func newGormLogger(l *zap.Logger, level string, slowMs int) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch level {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}
	if l == nil {
		return gormlogger.Default.LogMode(lvl)
	}
	if slowMs <= 0 {
		slowMs = 200
	}
	w := log.New(logger.ToWriter(l.Named("gorm"), zapcore.InfoLevel), "", 0)
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             time.Duration(slowMs) * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
