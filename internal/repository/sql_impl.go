package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// sqlDialect covers the few places where SQLite and PostgreSQL disagree.
type sqlDialect interface {
	placeholder() sq.PlaceholderFormat
	containsFold(column, term string) sq.Sqlizer
}

type sqlRepository struct {
	db      *sqlx.DB
	sb      sq.StatementBuilderType
	dialect sqlDialect
}

func newSQLRepository(db *sqlx.DB, dialect sqlDialect) *sqlRepository {
	return &sqlRepository{
		db:      db,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
		dialect: dialect,
	}
}

var (
	cityColumns            = []string{"id", "name", "description"}
	pointOfInterestColumns = []string{"id", "city_id", "name", "description"}
)

func (r *sqlRepository) CityExists(ctx context.Context, cityID int) (bool, error) {
	q, args, err := r.sb.Select("1").From("cities").Where(sq.Eq{"id": cityID}).
		Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, args...); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *sqlRepository) filterCities(b sq.SelectBuilder, filter model.CityFilter) sq.SelectBuilder {
	if name := strings.TrimSpace(filter.Name); name != "" {
		b = b.Where(sq.Eq{"name": name})
	}
	if search := strings.TrimSpace(filter.SearchQuery); search != "" {
		b = b.Where(sq.Or{
			r.dialect.containsFold("name", search),
			r.dialect.containsFold("description", search),
		})
	}
	return b
}

func (r *sqlRepository) GetCities(ctx context.Context, filter model.CityFilter) ([]model.City, int, error) {
	filter = filter.Normalize()

	countQ, countArgs, err := r.filterCities(r.sb.Select("COUNT(*)").From("cities"), filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQ, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count cities: %w", err)
	}

	q, args, err := r.filterCities(r.sb.Select(cityColumns...).From("cities"), filter).
		OrderBy("name", "id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	cities := []model.City{}
	if err := r.db.SelectContext(ctx, &cities, q, args...); err != nil {
		return nil, 0, fmt.Errorf("select cities: %w", err)
	}
	return cities, total, nil
}

func (r *sqlRepository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*model.City, error) {
	q, args, err := r.sb.Select(cityColumns...).From("cities").Where(sq.Eq{"id": cityID}).ToSql()
	if err != nil {
		return nil, err
	}
	var city model.City
	if err := r.db.GetContext(ctx, &city, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if includePointsOfInterest {
		pois, err := r.GetPointsOfInterestForCity(ctx, cityID)
		if err != nil {
			return nil, err
		}
		city.PointsOfInterest = pois
	}
	return &city, nil
}

func (r *sqlRepository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]model.PointOfInterest, error) {
	q, args, err := r.sb.Select(pointOfInterestColumns...).From("points_of_interest").
		Where(sq.Eq{"city_id": cityID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	pois := []model.PointOfInterest{}
	if err := r.db.SelectContext(ctx, &pois, q, args...); err != nil {
		return nil, err
	}
	return pois, nil
}

func (r *sqlRepository) GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*model.PointOfInterest, error) {
	q, args, err := r.sb.Select(pointOfInterestColumns...).From("points_of_interest").
		Where(sq.Eq{"id": poiID, "city_id": cityID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var poi model.PointOfInterest
	if err := r.db.GetContext(ctx, &poi, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &poi, nil
}

func (r *sqlRepository) NewUnitOfWork() UnitOfWork {
	return newUnitOfWork(r)
}

// applyChanges runs the batch in one transaction. Generated IDs are copied
// onto the staged entities only once the commit succeeded.
func (r *sqlRepository) applyChanges(ctx context.Context, changes []change) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var assign []func()
	for _, c := range changes {
		switch c.kind {
		case changeAddCity:
			cityID, err := r.insertCity(ctx, tx, c.city)
			if err != nil {
				return err
			}
			city := c.city
			assign = append(assign, func() { city.ID = cityID })
			for i := range city.PointsOfInterest {
				poi := &city.PointsOfInterest[i]
				poiID, err := r.insertPointOfInterest(ctx, tx, cityID, poi)
				if err != nil {
					return err
				}
				assign = append(assign, func() {
					poi.CityID = cityID
					poi.ID = poiID
				})
			}
		case changeAddPointOfInterest:
			if err := r.requireCity(ctx, tx, c.cityID); err != nil {
				return err
			}
			poi := c.poi
			poiID, err := r.insertPointOfInterest(ctx, tx, c.cityID, poi)
			if err != nil {
				return err
			}
			assign = append(assign, func() { poi.ID = poiID })
		case changeUpdatePointOfInterest:
			q, args, err := r.sb.Update("points_of_interest").
				Set("name", c.poi.Name).
				Set("description", c.poi.Description).
				Where(sq.Eq{"id": c.poi.ID, "city_id": c.cityID}).
				ToSql()
			if err != nil {
				return err
			}
			if err := execAffectingOne(ctx, tx, q, args, c.poi.ID); err != nil {
				return err
			}
		case changeDeletePointOfInterest:
			q, args, err := r.sb.Delete("points_of_interest").
				Where(sq.Eq{"id": c.poi.ID, "city_id": c.cityID}).
				ToSql()
			if err != nil {
				return err
			}
			if err := execAffectingOne(ctx, tx, q, args, c.poi.ID); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	for _, fn := range assign {
		fn()
	}
	return nil
}

func (r *sqlRepository) insertCity(ctx context.Context, tx *sqlx.Tx, city *model.City) (int, error) {
	q, args, err := r.sb.Insert("cities").
		Columns("name", "description").
		Values(city.Name, city.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := tx.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert city %q: %w", city.Name, err)
	}
	return id, nil
}

func (r *sqlRepository) insertPointOfInterest(ctx context.Context, tx *sqlx.Tx, cityID int, poi *model.PointOfInterest) (int, error) {
	q, args, err := r.sb.Insert("points_of_interest").
		Columns("city_id", "name", "description").
		Values(cityID, poi.Name, poi.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := tx.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert point of interest %q: %w", poi.Name, err)
	}
	return id, nil
}

func (r *sqlRepository) requireCity(ctx context.Context, tx *sqlx.Tx, cityID int) error {
	q, args, err := r.sb.Select("COUNT(*)").From("cities").Where(sq.Eq{"id": cityID}).ToSql()
	if err != nil {
		return err
	}
	var n int
	if err := tx.GetContext(ctx, &n, q, args...); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("city %d: %w", cityID, ErrNotFound)
	}
	return nil
}

func execAffectingOne(ctx context.Context, tx *sqlx.Tx, q string, args []interface{}, poiID int) error {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("point of interest %d: %w", poiID, ErrNotFound)
	}
	return nil
}
