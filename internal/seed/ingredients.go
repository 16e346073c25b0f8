// Package seed loads the reference ingredient catalog and dish templates.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

var ingredientColumns = []string{
	"food_id", "name_english", "name_myanmar", "category", "subcategory",
	"calories_per_100g_raw", "protein_g", "fat_g", "carbs_g", "fiber_g",
	"cooking_method", "calories_per_100g_cooked", "water_content_percent", "notes",
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Rows           int
	Ingredients    int
	CookingMethods int
	Skipped        int
}

type foodRow struct {
	nameEN, nameMM        string
	category, subcategory string
	raw                   float64
	protein, fat, carbs   float64
	fiber                 float64
	method                string
	cooked                float64
	water                 *float64
	notes                 string
}

// ImportIngredients reads the food CSV and writes one ingredient per
// English/Myanmar name pair with every row as a cooking method. The Raw row,
// or the first row when there is none, supplies the base values. Names
// already in the catalog are skipped.
func ImportIngredients(ctx context.Context, db *gorm.DB, r io.Reader, logger *zap.Logger) (*ImportResult, error) {
	rows, err := readFoodRows(r)
	if err != nil {
		return nil, err
	}

	type group struct {
		key  string
		rows []foodRow
	}
	var groups []*group
	byKey := make(map[string]*group)
	for _, row := range rows {
		key := row.nameEN + "|" + row.nameMM
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}

	res := &ImportResult{Rows: len(rows)}
	for _, g := range groups {
		base := g.rows[0]
		for _, row := range g.rows {
			if strings.EqualFold(row.method, "raw") {
				base = row
				break
			}
		}

		var existing int64
		err := db.WithContext(ctx).Model(&models.Ingredient{}).
			Where("name_english = ? AND name_myanmar = ?", base.nameEN, base.nameMM).
			Count(&existing).Error
		if err != nil {
			return res, fmt.Errorf("failed to check %q: %w", base.nameEN, err)
		}
		if existing > 0 {
			res.Skipped++
			continue
		}

		ing := models.Ingredient{
			NameEnglish:     base.nameEN,
			NameMyanmar:     base.nameMM,
			Category:        base.category,
			Subcategory:     base.subcategory,
			CaloriesPer100g: base.raw,
			ProteinPer100g:  base.protein,
			FatPer100g:      base.fat,
			CarbsPer100g:    base.carbs,
			FiberPer100g:    base.fiber,
			DataSource:      models.DataSourceDatabase,
			ConfidenceScore: 1,
			Verified:        true,
			Notes:           base.notes,
		}
		for _, row := range g.rows {
			if row.method == "" {
				continue
			}
			m := models.NewCookingMethod(&models.Ingredient{CaloriesPer100g: row.raw}, row.method, row.cooked)
			m.WaterContentPercent = row.water
			m.Notes = row.notes
			ing.CookingMethods = append(ing.CookingMethods, m)
		}

		if err := db.WithContext(ctx).Create(&ing).Error; err != nil {
			return res, fmt.Errorf("failed to insert %q: %w", ing.NameEnglish, err)
		}
		res.Ingredients++
		res.CookingMethods += len(ing.CookingMethods)
		logger.Debug("Imported ingredient",
			zap.String("name", ing.NameEnglish),
			zap.Int("cooking_methods", len(ing.CookingMethods)))
	}

	logger.Info("Ingredient import complete",
		zap.Int("rows", res.Rows),
		zap.Int("ingredients", res.Ingredients),
		zap.Int("cooking_methods", res.CookingMethods),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func readFoodRows(r io.Reader) ([]foodRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range ingredientColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []foodRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string { return strings.TrimSpace(rec[idx[col]]) }

		row := foodRow{
			nameEN:      get("name_english"),
			nameMM:      get("name_myanmar"),
			category:    get("category"),
			subcategory: get("subcategory"),
			method:      get("cooking_method"),
			notes:       get("notes"),
		}
		if row.nameEN == "" {
			continue
		}

		nums := []struct {
			col string
			dst *float64
		}{
			{"calories_per_100g_raw", &row.raw},
			{"protein_g", &row.protein},
			{"fat_g", &row.fat},
			{"carbs_g", &row.carbs},
			{"fiber_g", &row.fiber},
			{"calories_per_100g_cooked", &row.cooked},
		}
		for _, n := range nums {
			if *n.dst, err = parseNumber(get(n.col)); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, n.col, err)
			}
		}
		if w := get("water_content_percent"); w != "" {
			v, err := parseNumber(w)
			if err != nil {
				return nil, fmt.Errorf("line %d: water_content_percent: %w", line, err)
			}
			row.water = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
