package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/middleware"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/utils"
)

// Owned is implemented by entities that belong to a customer. A nil owner
// means the record is unowned (admin-created).
type Owned interface {
	OwnerID() *uuid.UUID
}

// Reference declares a dependent table for the restrict-delete policy:
// rows cannot be deleted while referenced.
type Reference struct {
	Model  interface{}
	Column string
	Name   string
}

// ResourceConfig parameterizes the generic CRUD handler with one entity's
// authorization policy and hooks.
type ResourceConfig[T any] struct {
	// Name is the singular resource name used in error messages.
	Name string
	// OwnerColumn narrows list queries to the caller's own rows when the
	// caller has the customer role.
	OwnerColumn string
	// OwnedGet enforces ownership on single lookups; admins bypass.
	OwnedGet bool
	// OwnedUpdate enforces ownership on updates; admins bypass.
	OwnedUpdate bool
	// Immutable keys are silently stripped from update payloads, in
	// addition to id/created_at/updated_at.
	Immutable []string
	// BeforeCreate runs after body parsing and before the insert.
	BeforeCreate func(c *fiber.Ctx, entity *T) error
	// References lists tables that block deletion while rows point here.
	References []Reference
	// Preloads are association names loaded on list and get.
	Preloads []string
}

// Resource is a generic CRUD handler over one entity collection. Every
// resource shares the same five-operation shape; ownership and role
// policy come from the config and the route middleware chain.
type Resource[T any] struct {
	db  *gorm.DB
	cfg ResourceConfig[T]
}

// NewResource constructs a Resource handler.
func NewResource[T any](db *gorm.DB, cfg ResourceConfig[T]) *Resource[T] {
	return &Resource[T]{db: db, cfg: cfg}
}

// List returns a page of entities as {data, total, page, limit}.
// Out-of-range pages return an empty list with the true total.
func (r *Resource[T]) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := r.db.Model(new(T))
	if r.cfg.OwnerColumn != "" {
		if identity, ok := middleware.CurrentIdentity(c); ok && identity.Role == models.RoleCustomer {
			query = query.Where(r.cfg.OwnerColumn+" = ?", identity.ID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	for _, preload := range r.cfg.Preloads {
		query = query.Preload(preload)
	}

	items := make([]T, 0)
	if err := query.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":  items,
		"total": total,
		"page":  pg.Page,
		"limit": pg.Limit,
	})
}

// Get returns a single entity by ID.
func (r *Resource[T]) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.BadRequest("invalid id")
	}

	query := r.db
	for _, preload := range r.cfg.Preloads {
		query = query.Preload(preload)
	}

	var entity T
	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(r.cfg.Name + " not found")
		}
		return err
	}

	if r.cfg.OwnedGet {
		if err := r.checkOwnership(c, &entity); err != nil {
			return err
		}
	}

	return c.JSON(&entity)
}

// Create inserts a new entity from the pre-validated body.
func (r *Resource[T]) Create(c *fiber.Ctx) error {
	var entity T
	if err := c.BodyParser(&entity); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	if r.cfg.BeforeCreate != nil {
		if err := r.cfg.BeforeCreate(c, &entity); err != nil {
			return err
		}
	}

	if err := r.db.Create(&entity).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(&entity)
}

// Update applies a partial merge: unspecified fields keep prior values.
func (r *Resource[T]) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.BadRequest("invalid id")
	}

	var entity T
	if err := r.db.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(r.cfg.Name + " not found")
		}
		return err
	}

	if r.cfg.OwnedUpdate {
		if err := r.checkOwnership(c, &entity); err != nil {
			return err
		}
	}

	updates, err := parseUpdates(c, r.cfg.Immutable)
	if err != nil {
		return err
	}

	res := r.db.Model(&entity).Updates(updates)
	if res.Error != nil {
		return res.Error
	}

	return c.JSON(fiber.Map{"updated": res.RowsAffected})
}

// Delete removes an entity unless dependent rows still reference it.
// There is no cascade: the restrict policy forces dependents to be removed
// first.
func (r *Resource[T]) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.BadRequest("invalid id")
	}

	for _, ref := range r.cfg.References {
		var count int64
		if err := r.db.Model(ref.Model).Where(ref.Column+" = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict(fmt.Sprintf(
				"cannot delete %s: referenced by %d existing %s", r.cfg.Name, count, ref.Name,
			))
		}
	}

	res := r.db.Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}

	return c.JSON(fiber.Map{"deleted": res.RowsAffected})
}

func (r *Resource[T]) checkOwnership(c *fiber.Ctx, entity *T) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	if identity.Role == models.RoleAdmin {
		return nil
	}

	owned, ok := any(entity).(Owned)
	if !ok {
		return nil
	}

	owner := owned.OwnerID()
	if owner == nil || *owner != identity.ID {
		return apperr.Forbidden("forbidden")
	}

	return nil
}

// parseUpdates reads a partial payload into a column map, stripping keys
// that must never be written directly.
func parseUpdates(c *fiber.Ctx, immutable []string) (map[string]interface{}, error) {
	var updates map[string]interface{}
	if err := json.Unmarshal(c.Body(), &updates); err != nil {
		return nil, apperr.BadRequest("invalid request body")
	}

	delete(updates, "id")
	delete(updates, "created_at")
	delete(updates, "updated_at")
	for _, key := range immutable {
		delete(updates, key)
	}

	if len(updates) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}

	return updates, nil
}
