package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

const DefaultSheet = "Filiais"

// Required spreadsheet columns. "Agente" names the company a unit belongs
// to; units sharing an agent are grouped under one company.
const (
	columnCompanyID = "ID de Empresa"
	columnUnitID    = "ID de Filial"
	columnAgent     = "Agente"
	columnUnitName  = "Nome Filial"
)

// ReadUnits parses the client spreadsheet into companies and their units.
// External ids are assigned sequentially in order of first appearance, so
// re-importing the same sheet yields the same folder names.
func ReadUnits(path, sheet string) ([]domain.Company, []domain.Unit, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	columns, err := headerIndex(rows[0])
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	var companies []domain.Company
	var units []domain.Unit
	companyByAgent := make(map[string]string)
	unitCount := make(map[string]int)

	for i, row := range rows[1:] {
		agent := strings.TrimSpace(cell(row, columns[columnAgent]))
		unitName := strings.TrimSpace(cell(row, columns[columnUnitName]))
		if agent == "" && unitName == "" {
			continue
		}
		if agent == "" || unitName == "" {
			return nil, nil, fmt.Errorf("row %d: missing agent or unit name", i+2)
		}

		companyID, ok := companyByAgent[agent]
		if !ok {
			companyID = uuid.NewString()
			companies = append(companies, domain.Company{
				ID:         companyID,
				ExternalID: fmt.Sprintf("%03d", len(companies)+1),
				Name:       agent,
				CreatedAt:  now,
			})
			companyByAgent[agent] = companyID
		}

		unitCount[companyID]++
		units = append(units, domain.Unit{
			ID:         uuid.NewString(),
			ExternalID: fmt.Sprintf("%03d", unitCount[companyID]),
			CompanyID:  companyID,
			Name:       unitName,
			CreatedAt:  now,
		})
	}

	if len(units) == 0 {
		return nil, nil, fmt.Errorf("sheet %q has no usable rows", sheet)
	}
	return companies, units, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnCompanyID, columnUnitID, columnAgent, columnUnitName} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return index, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
