package classify

import "testing"

func TestTokenizeStripsDiacriticsAndSplitsRuns(t *testing.T) {
	normalized, tokens := Tokenize("Procuração_Licença-2024.PDF")

	if normalized != "procuracao_licenca-2024.pdf" {
		t.Fatalf("unexpected normalized form %q", normalized)
	}
	for _, want := range []string{"procuracao", "licenca", "2024", "pdf"} {
		if !hasToken(tokens, want) {
			t.Fatalf("expected token %q in %v", want, tokens)
		}
	}
	if hasToken(tokens, "procuração") {
		t.Fatalf("accented token should not survive normalization")
	}
}

func TestTokenizeIsIdempotent(t *testing.T) {
	names := []string{"Relatório-Fev-24.pdf", "NOTA CP cliente.pdf", "estudo_viabilidade.xlsx", ""}
	for _, name := range names {
		first, firstTokens := Tokenize(name)
		second, secondTokens := Tokenize(first)
		if first != second {
			t.Fatalf("Tokenize(%q) not idempotent: %q vs %q", name, first, second)
		}
		if len(firstTokens) != len(secondTokens) {
			t.Fatalf("token sets diverge for %q", name)
		}
		for tok := range firstTokens {
			if !hasToken(secondTokens, tok) {
				t.Fatalf("token %q lost on second pass for %q", tok, name)
			}
		}
	}
}

func TestTokenizeEmptyName(t *testing.T) {
	normalized, tokens := Tokenize("")
	if normalized != "" || len(tokens) != 0 {
		t.Fatalf("expected empty result, got %q / %v", normalized, tokens)
	}
}
