package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/knights/internal/domain"
	"github.com/totegamma/knights/internal/infra/database/models"
	"github.com/totegamma/knights/internal/usecase"
)

// knightColumns maps Knight JSON field names to columns. "weapons" has no
// column and switches the Weapons preload instead.
var knightColumns = map[string]string{
	"id":           "id",
	"name":         "name",
	"nickname":     "nickname",
	"birthday":     "birthday",
	"attributes":   "attributes",
	"keyAttribute": "key_attribute",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type KnightRepository struct {
	db *gorm.DB
}

func NewKnightRepository(db *gorm.DB) *KnightRepository {
	return &KnightRepository{db: db}
}

func (r *KnightRepository) FindByNickname(ctx context.Context, nickname string) (domain.Knight, error) {
	var knight models.Knight
	err := r.db.WithContext(ctx).
		Preload("Weapons", orderByPosition).
		Where("nickname = ?", nickname).
		Take(&knight).Error
	if err != nil {
		return domain.Knight{}, translate(err, "KnightRepository.FindByNickname")
	}
	return toDomain(knight)
}

func (r *KnightRepository) FindByID(ctx context.Context, id string) (domain.Knight, error) {
	var knight models.Knight
	err := r.db.WithContext(ctx).
		Preload("Weapons", orderByPosition).
		Where("id = ?", id).
		Take(&knight).Error
	if err != nil {
		return domain.Knight{}, translate(err, "KnightRepository.FindByID")
	}
	return toDomain(knight)
}

// Insert stores the knight and its weapons in one transaction.
func (r *KnightRepository) Insert(ctx context.Context, knight domain.Knight) (domain.Knight, error) {
	model := toModel(knight)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
			return err
		}
		if len(model.Weapons) == 0 {
			return nil
		}
		return tx.Create(&model.Weapons).Error
	})
	if err != nil {
		return domain.Knight{}, translate(err, "KnightRepository.Insert")
	}

	return r.FindByID(ctx, knight.ID)
}

// Save writes the knight's own columns. Weapons are immutable after creation
// and are left untouched.
func (r *KnightRepository) Save(ctx context.Context, knight domain.Knight) (domain.Knight, error) {
	model := toModel(knight)

	result := r.db.WithContext(ctx).
		Model(&model).
		Select("name", "nickname", "birthday", "attributes", "key_attribute").
		Updates(&model)
	if result.Error != nil {
		return domain.Knight{}, translate(result.Error, "KnightRepository.Save")
	}
	if result.RowsAffected == 0 {
		return domain.Knight{}, domain.NotFoundError{Resource: "knight"}
	}

	return r.FindByID(ctx, knight.ID)
}

// Delete removes the knight; weapons go with it through the cascade.
func (r *KnightRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Knight{}, "id = ?", id)
	if result.Error != nil {
		return 0, translate(result.Error, "KnightRepository.Delete")
	}
	return result.RowsAffected, nil
}

// Paginate matches Term case-insensitively against name and nickname.
func (r *KnightRepository) Paginate(ctx context.Context, query domain.PageQuery) (domain.Page[domain.Knight], error) {
	if query.Page < 1 || query.Limit < 1 {
		return domain.Page[domain.Knight]{}, fmt.Errorf("invalid page %d / limit %d", query.Page, query.Limit)
	}

	sortColumn, ok := knightColumns[query.Sort.Field]
	if !ok {
		return domain.Page[domain.Knight]{}, fmt.Errorf("unsupported sort field %q", query.Sort.Field)
	}

	columns, preloadWeapons, err := projection(query.Fields)
	if err != nil {
		return domain.Page[domain.Knight]{}, err
	}

	base := r.db.WithContext(ctx).Model(&models.Knight{})
	if query.Term != "" {
		like := "%" + likeEscaper.Replace(query.Term) + "%"
		base = base.Where("name ILIKE ? OR nickname ILIKE ?", like, like)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return domain.Page[domain.Knight]{}, translate(err, "KnightRepository.Paginate: count")
	}

	find := base.
		Select(columns).
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumn}, Desc: query.Sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit)
	if preloadWeapons {
		find = find.Preload("Weapons", orderByPosition)
	}

	var rows []models.Knight
	if err := find.Find(&rows).Error; err != nil {
		return domain.Page[domain.Knight]{}, translate(err, "KnightRepository.Paginate: find")
	}

	docs := make([]domain.Knight, 0, len(rows))
	for _, row := range rows {
		knight, err := toDomain(row)
		if err != nil {
			return domain.Page[domain.Knight]{}, err
		}
		docs = append(docs, knight)
	}

	return domain.Page[domain.Knight]{
		Docs:  docs,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// projection always selects id, which the Weapons preload joins on.
func projection(fields []string) ([]string, bool, error) {
	if len(fields) == 0 {
		return []string{"*"}, true, nil
	}

	columns := []string{"id"}
	preloadWeapons := false
	for _, field := range fields {
		if field == "weapons" {
			preloadWeapons = true
			continue
		}
		column, ok := knightColumns[field]
		if !ok {
			return nil, false, fmt.Errorf("unsupported field %q", field)
		}
		if column != "id" {
			columns = append(columns, column)
		}
	}
	return columns, preloadWeapons, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func translate(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundError{Resource: "knight"}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(domain.ErrDuplicate, op)
	default:
		return errors.Wrap(err, op)
	}
}

func toModel(knight domain.Knight) models.Knight {
	attributes := make(map[string]int, len(knight.Attributes))
	for attr, score := range knight.Attributes {
		attributes[string(attr)] = score
	}

	weapons := make([]models.Weapon, 0, len(knight.Weapons))
	for i, w := range knight.Weapons {
		weapons = append(weapons, models.Weapon{
			ID:       w.ID,
			KnightID: knight.ID,
			Position: i,
			Name:     w.Name,
			Mod:      w.Mod,
			Attr:     string(w.Attr),
			Equipped: w.Equipped,
		})
	}

	return models.Knight{
		ID:           knight.ID,
		Name:         knight.Name,
		Nickname:     knight.Nickname,
		Birthday:     domain.Date(knight.Birthday),
		Attributes:   attributes,
		KeyAttribute: string(knight.KeyAttribute),
		Weapons:      weapons,
	}
}

func toDomain(model models.Knight) (domain.Knight, error) {
	attributes, err := domain.NewAttributes(model.Attributes)
	if err != nil {
		return domain.Knight{}, errors.Wrapf(err, "knight %s", model.ID)
	}

	weapons := make([]domain.Weapon, 0, len(model.Weapons))
	for _, w := range model.Weapons {
		weapons = append(weapons, domain.Weapon{
			ID:       w.ID,
			Name:     w.Name,
			Mod:      w.Mod,
			Attr:     domain.Attribute(w.Attr),
			Equipped: w.Equipped,
		})
	}

	return domain.Knight{
		ID:           model.ID,
		Name:         model.Name,
		Nickname:     model.Nickname,
		Birthday:     domain.Date(model.Birthday),
		Weapons:      weapons,
		Attributes:   attributes,
		KeyAttribute: domain.Attribute(model.KeyAttribute),
	}, nil
}

var _ usecase.KnightRepository = (*KnightRepository)(nil)
