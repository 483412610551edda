package database

import (
	"fmt"
	"time"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const UniqueAttemptIndex = "uniq_results_user_quiz"

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(d, debug)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Open 统一的 gorm 配置，测试中可传入其他 dialector
func Open(d gorm.Dialector, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		// 唯一键冲突统一转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate 建表；外键带 ON DELETE CASCADE，删除班级时级联删除测验、题目、选项和成绩
func Migrate(db *gorm.DB, scoring config.ScoringConfig) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Class{},
		&model.Enrollment{},
		&model.Quiz{},
		&model.Question{},
		&model.Option{},
		&model.Result{},
	)
	if err != nil {
		return err
	}

	if err := syncAttemptIndex(db, scoring.AllowRetake); err != nil {
		return err
	}

	logger.Log.Info("Database migration completed")
	return nil
}

// syncAttemptIndex 不允许重复作答时由数据库唯一索引保证每个学生每个测验只有一条成绩
func syncAttemptIndex(db *gorm.DB, allowRetake bool) error {
	migrator := db.Migrator()
	exists := migrator.HasIndex(&model.Result{}, UniqueAttemptIndex)

	switch {
	case !allowRetake && !exists:
		return db.Exec(fmt.Sprintf("CREATE UNIQUE INDEX %s ON results (user_id, quiz_id)", UniqueAttemptIndex)).Error
	case allowRetake && exists:
		return migrator.DropIndex(&model.Result{}, UniqueAttemptIndex)
	}
	return nil
}
