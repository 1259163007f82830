package ingest

import "testing"

func TestRouteBySourceFolder(t *testing.T) {
	tests := []struct {
		path   string
		folder string
		routed bool
	}{
		{"1_BM Energia/contrato.pdf", "bm-energia", true},
		{"01 BM-Energia/sub/doc.pdf", "bm-energia", true},
		{"2_Acme Ltda/cadastro.pdf", "documentos-cliente", true},
		{"3_Enel/fatura antiga.pdf", "distribuidora", true},
		{"4_CCEE/modelagem.xlsx", "ccee-modelagem", true},
		{"04 ccee/sub/mod.xlsx", "ccee-modelagem", true},
		{"5_Projetos/solar.pdf", "projetos", true},
		{"05 projeto/solar.pdf", "projetos", true},
		{"7_Comercializadoras/prop.pdf", "comercializadoras", true},
		{"07 comercializadora/prop.pdf", "comercializadoras", true},

		// A bare year is not a numbered source folder.
		{"2019-relatorios/doc.pdf", "", false},
		// Without directory structure there is nothing to route on.
		{"2_Acme Ltda.pdf", "", false},
		{"contrato.pdf", "", false},
		// Reserved numbers without the expected word do not route.
		{"1_Empresa/doc.pdf", "", false},
		{"4_Distribuidora/doc.pdf", "", false},
		{"6_Relatorios/doc.pdf", "", false},
		{`1_BM Energia\contrato.pdf`, "bm-energia", true},
	}

	for _, tt := range tests {
		folder, routed := RouteBySourceFolder(tt.path)
		if routed != tt.routed || folder != tt.folder {
			t.Errorf("RouteBySourceFolder(%q) = (%q, %v), want (%q, %v)",
				tt.path, folder, routed, tt.folder, tt.routed)
		}
	}
}
