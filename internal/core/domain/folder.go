package domain

import "strings"

// FolderTarget is one of the 13 fixed destination categories.
type FolderTarget struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"name"`
	RelativePath  string   `json:"path"`
	DocumentTypes []string `json:"types"`
}

const MiscellanyFolderID = "miscelanea13"

var folderTargets = []FolderTarget{
	{ID: "relatorios", DisplayName: "01 Relatórios e Resultados", RelativePath: "01 Relatórios e Resultados", DocumentTypes: []string{"REL", "RES"}},
	{ID: "faturas", DisplayName: "02 Faturas", RelativePath: "02 Faturas", DocumentTypes: []string{"FAT"}},
	{ID: "notas-energia", DisplayName: "03 Notas de Energia", RelativePath: "03 Notas de Energia", DocumentTypes: []string{"NE-CP", "NE-LP", "NE-CPC", "NE-LPC", "NE-VE"}},
	{ID: "ccee-dri", DisplayName: "04 CCEE - DRI", RelativePath: "04 CCEE - DRI", DocumentTypes: []string{"CCEE"}},
	{ID: "bm-energia", DisplayName: "05 BM Energia", RelativePath: "05 BM Energia", DocumentTypes: []string{"DOC-CTR", "DOC-PRO", "MIN-CTR", "MIN-PRO", "MIN-CAR"}},
	{ID: "documentos-cliente", DisplayName: "06 Documentos do Cliente", RelativePath: "06 Documentos do Cliente", DocumentTypes: []string{"DOC-CAD", "DOC-ADT", "DOC-COM", "DOC-LIC", "DOC-CAR"}},
	{ID: "projetos", DisplayName: "07 Projetos", RelativePath: "07 Projetos", DocumentTypes: []string{}},
	{ID: "comercializadoras", DisplayName: "08 Comercializadoras", RelativePath: "08 Comercializadoras", DocumentTypes: []string{}},
	{ID: "ccee-modelagem", DisplayName: "09 CCEE - Modelagem", RelativePath: "09 CCEE - Modelagem", DocumentTypes: []string{}},
	{ID: "distribuidora", DisplayName: "10 Distribuidora", RelativePath: "10 Distribuidora", DocumentTypes: []string{}},
	{ID: "icms", DisplayName: "11 ICMS", RelativePath: "11 ICMS", DocumentTypes: []string{"ICMS-DEVEC", "ICMS-LDO", "ICMS-REC"}},
	{ID: "estudos", DisplayName: "12 Estudos e Análises", RelativePath: "12 Estudos e Análises", DocumentTypes: []string{"EST"}},
	{ID: MiscellanyFolderID, DisplayName: "13 Miscelânea", RelativePath: "13 Miscelânea", DocumentTypes: []string{}},
}

// Folders returns the taxonomy in display order.
func Folders() []FolderTarget {
	out := make([]FolderTarget, len(folderTargets))
	copy(out, folderTargets)
	return out
}

func FolderByID(id string) (FolderTarget, bool) {
	for _, f := range folderTargets {
		if f.ID == id {
			return f, true
		}
	}
	return FolderTarget{}, false
}

// FolderForType routes a document type code to its destination folder.
// Prefixed families (NE-, MIN-, CCEE, ICMS-) route as a group; everything
// else matches by exact membership in the taxonomy.
func FolderForType(documentType string) (FolderTarget, bool) {
	t := strings.ToUpper(strings.TrimSpace(documentType))
	if t == "" {
		return FolderTarget{}, false
	}

	switch {
	case strings.HasPrefix(t, "CCEE"):
		return FolderByID("ccee-dri")
	case strings.HasPrefix(t, "NE-"):
		return FolderByID("notas-energia")
	case strings.HasPrefix(t, "ICMS-"):
		return FolderByID("icms")
	case strings.HasPrefix(t, "MIN-"):
		return FolderByID("bm-energia")
	}

	for _, f := range folderTargets {
		for _, dt := range f.DocumentTypes {
			if dt == t {
				return f, true
			}
		}
	}
	return FolderTarget{}, false
}
