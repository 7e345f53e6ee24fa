package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/events"
	"taskflow/internal/logger"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

// stack is the storage, cache, events and services every command shares.
type stack struct {
	cfg    config.Config
	db     *gorm.DB
	cache  cache.Cache
	events events.Publisher

	taskRepo        *repository.TaskRepository
	appointmentRepo *repository.AppointmentRepository

	categories   *service.CategoryService
	tasks        *service.TaskService
	appointments *service.AppointmentService
}

func openStack(ctx context.Context) (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	st := &stack{cfg: cfg, db: db}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("cache: %w", err)
		}
		st.cache = rc
	} else {
		st.cache = cache.NewMemory(cfg.CacheTTL)
	}

	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("events: %w", err)
		}
		st.events = pub
	} else {
		st.events = events.Nop{}
	}

	st.taskRepo = repository.NewTaskRepository(db)
	st.appointmentRepo = repository.NewAppointmentRepository(db)
	st.categories = service.NewCategoryService(repository.NewCategoryRepository(db), st.cache, st.events)
	st.tasks = service.NewTaskService(st.taskRepo, st.categories, st.cache, st.events)
	st.appointments = service.NewAppointmentService(st.appointmentRepo, st.categories, st.cache, st.events)
	return st, nil
}

func (s *stack) ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *stack) Close() {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			logger.Warn("Closing events failed", "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Warn("Closing cache failed", "error", err)
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}
