package service

import (
	"context"
	"sort"
	"strings"

	"taskflow/internal/cache"
	"taskflow/internal/events"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type AppointmentService struct {
	appointmentRepo *repository.AppointmentRepository
	categories      *CategoryService
	cache           cache.Cache
	changes         changes
}

func NewAppointmentService(appointmentRepo *repository.AppointmentRepository, categories *CategoryService, c cache.Cache, pub events.Publisher) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		categories:      categories,
		cache:           c,
		changes:         newChanges(c, pub, "appointment", AppointmentsTag),
	}
}

func (s *AppointmentService) List(ctx context.Context, filter model.AppointmentFilter) ([]model.Appointment, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	key := filterKey(AppointmentsTag, filter.Query())
	return readThrough(ctx, s.cache, key, []string{AppointmentsTag}, func() ([]model.Appointment, error) {
		return s.appointmentRepo.List(ctx, filter)
	})
}

func (s *AppointmentService) Get(ctx context.Context, id uint) (*model.Appointment, error) {
	return readThrough(ctx, s.cache, s.changes.itemKey(id), s.changes.itemTags(id), func() (*model.Appointment, error) {
		appointment, err := s.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if appointment == nil {
			return nil, ErrNotFound
		}
		return appointment, nil
	})
}

func (s *AppointmentService) Search(ctx context.Context, text string) ([]model.Appointment, error) {
	text = strings.TrimSpace(text)
	return readThrough(ctx, s.cache, AppointmentsTag+":search:"+strings.ToLower(text), []string{AppointmentsTag}, func() ([]model.Appointment, error) {
		return s.appointmentRepo.Search(ctx, text)
	})
}

func (s *AppointmentService) Create(ctx context.Context, input model.NewAppointment) (*model.Appointment, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := checkTimeRange(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	appointment := input.Appointment()
	if appointment.ReminderEnabled && appointment.ReminderTime == nil {
		lead := string(model.Reminder15Min)
		appointment.ReminderTime = &lead
	}

	name, categoryID, err := s.categories.resolve(ctx, appointment.Category, appointment.CategoryID)
	if err != nil {
		return nil, err
	}
	appointment.Category, appointment.CategoryID = name, categoryID

	if err := s.appointmentRepo.Create(ctx, &appointment); err != nil {
		return nil, err
	}

	s.changes.record(ctx, events.Created, appointment.ID)
	return &appointment, nil
}

// Update applies the field update set. When only one end of the time range
// changes, the other end is read from the stored row for the range check.
func (s *AppointmentService) Update(ctx context.Context, id uint, update model.AppointmentUpdate) (*model.Appointment, error) {
	if err := validateStruct(update); err != nil {
		return nil, err
	}
	if len(update.Columns()) == 0 {
		return nil, invalidField("", "no fields to update")
	}

	if update.StartTime != nil || update.EndTime != nil {
		current, err := s.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}
		start, end := current.StartTime, current.EndTime
		if update.StartTime != nil {
			start = *update.StartTime
		}
		if update.EndTime != nil {
			end = *update.EndTime
		}
		if err := checkTimeRange(start, end); err != nil {
			return nil, err
		}
	}

	if update.Category != nil || update.CategoryID != nil {
		var label string
		if update.Category != nil {
			label = *update.Category
		}
		name, categoryID, err := s.categories.resolve(ctx, label, update.CategoryID)
		if err != nil {
			return nil, err
		}
		update.Category, update.CategoryID = &name, categoryID
		update.DetachCategory = categoryID == nil
	}

	appointment, err := s.appointmentRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrNotFound
	}

	s.changes.record(ctx, events.Updated, id)
	return appointment, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.appointmentRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.changes.record(ctx, events.Deleted, id)
	return nil
}

// Today lists the appointments dated today in start order.
func (s *AppointmentService) Today(ctx context.Context, today string) ([]model.Appointment, error) {
	if !matchesLayout(today, model.DateLayout) {
		return nil, invalidField("date", "must be a date in YYYY-MM-DD format")
	}
	appointments, err := s.List(ctx, model.AppointmentFilter{DateFrom: today, DateTo: today, SortBy: model.SortByDate, SortOrder: model.SortAsc})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(appointments, func(i, j int) bool { return appointments[i].StartTime < appointments[j].StartTime })
	return appointments, nil
}

// checkTimeRange relies on HH:MM strings comparing in clock order.
func checkTimeRange(start, end string) error {
	if end < start {
		return invalidField("endTime", "must not be before startTime")
	}
	return nil
}
