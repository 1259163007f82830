package classify

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

var (
	invoiceLiteralPattern = regexp.MustCompile(`^(\d{4})-(\d{2})\.(pdf|xlsm|xlsx?|docx?)$`)
	reportMonthPattern    = regexp.MustCompile(`(jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez)-(\d{2})`)
	cceeCodedPattern      = regexp.MustCompile(`(?i)^CCEE-(CFZ\d{3}|GFN\d{3}|LFN\d{3}|LFRCA\d{3}|LFRES\d{3}|PEN\d{3}|SUM\d{3}|BOLETOCA|ND)-(\d{4})-(0[1-9]|1[0-2])`)
	resultLiteralPattern  = regexp.MustCompile(`^RES-(\d{4})-(0[1-9]|1[0-2])`)
)

var reportMonths = map[string]string{
	"jan": "01", "fev": "02", "mar": "03", "abr": "04",
	"mai": "05", "jun": "06", "jul": "07", "ago": "08",
	"set": "09", "out": "10", "nov": "11", "dez": "12",
}

// Classifier derives a document type and accounting period from a file's
// name and modification time. It is pure; the injectable clock only feeds
// the report rule's no-date fallback.
type Classifier struct {
	now func() time.Time
}

func NewClassifier(now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{now: now}
}

// Classify runs the ordered rule cascade. The first matching rule wins;
// rule order is part of the contract because several names match more than
// one pattern.
func (c *Classifier) Classify(file domain.FileDescriptor) domain.Classification {
	lowered := strings.ToLower(file.Name)
	normalized, tokens := Tokenize(file.Name)

	cls, matched := c.applyCascade(file, lowered, normalized, tokens)
	if !matched {
		return domain.Classification{Reason: "Tipo nao identificado - selecao manual necessaria"}
	}

	cls.SuggestedName = suggestName(cls, file.Name)
	return cls
}

func (c *Classifier) applyCascade(
	file domain.FileDescriptor,
	lowered, normalized string,
	tokens map[string]struct{},
) (domain.Classification, bool) {
	if m := invoiceLiteralPattern.FindStringSubmatch(lowered); m != nil {
		period := m[1] + "-" + m[2]
		return domain.Classification{
			DocumentType: "FAT",
			Period:       period,
			Confidence:   95,
			Reason:       fmt.Sprintf("Fatura detectada: nome contem apenas data (%s)", period),
		}, true
	}

	if cls, ok := classifyEnergyNote(file, tokens); ok {
		return cls, true
	}

	if cls, ok := classifyICMS(file, lowered); ok {
		return cls, true
	}

	if strings.Contains(lowered, "estudo") {
		return domain.Classification{
			DocumentType: "EST",
			Period:       periodFromModification(file),
			Confidence:   90,
			Reason:       "Estudo detectado: nome contem \"estudo\" - usando data de modificacao",
		}, true
	}

	if cls, ok := classifyDocumentOrMinute(file, normalized, tokens); ok {
		return cls, true
	}

	if strings.Contains(lowered, "relatorio") || strings.Contains(normalized, "relatorio") {
		return c.classifyReport(lowered), true
	}

	if m := cceeCodedPattern.FindStringSubmatch(file.Name); m != nil {
		return domain.Classification{
			DocumentType: "CCEE",
			Period:       m[2] + "-" + m[3],
			Confidence:   95,
			Reason:       "Padrao exato CCEE detectado",
		}, true
	}

	if m := resultLiteralPattern.FindStringSubmatch(file.Name); m != nil {
		return domain.Classification{
			DocumentType: "RES",
			Period:       m[1] + "-" + m[2],
			Confidence:   95,
			Reason:       "Padrao exato RES detectado",
		}, true
	}

	if strings.Contains(lowered, "boleto") {
		return domain.Classification{
			DocumentType: "CCEE-BOLETOCA",
			Period:       periodFromModification(file),
			Confidence:   85,
			Reason:       "CCEE-BOLETOCA por palavra-chave",
		}, true
	}

	return domain.Classification{}, false
}

func classifyEnergyNote(file domain.FileDescriptor, tokens map[string]struct{}) (domain.Classification, bool) {
	anyEnergyToken := hasToken(tokens, "nota") || hasToken(tokens, "cpc") || hasToken(tokens, "lpc") ||
		hasToken(tokens, "cp") || hasToken(tokens, "lp") || hasToken(tokens, "venda") || hasToken(tokens, "ve")
	if !anyEnergyToken {
		return domain.Classification{}, false
	}

	var docType, reason string
	switch {
	case hasToken(tokens, "cpc"):
		docType, reason = "NE-CPC", `Nota de Energia CPC: token "cpc"`
	case hasToken(tokens, "lpc"):
		docType, reason = "NE-LPC", `Nota de Energia LPC: token "lpc"`
	case hasToken(tokens, "cp"):
		docType, reason = "NE-CP", `Nota de Energia CP: token "cp"`
	case hasToken(tokens, "lp"):
		docType, reason = "NE-LP", `Nota de Energia LP: token "lp"`
	case hasToken(tokens, "venda"), hasToken(tokens, "ve"):
		docType, reason = "NE-VE", `Nota de Energia Venda: token "venda/ve"`
	default:
		docType, reason = "NE-CP", `Nota de Energia: token "nota"`
	}

	period := previousPeriodFromModification(file)
	return domain.Classification{
		DocumentType: docType,
		Period:       period,
		Confidence:   85,
		Reason:       fmt.Sprintf("%s - Data: modificacao menos 1 mes (%s)", reason, period),
	}, true
}

func classifyICMS(file domain.FileDescriptor, lowered string) (domain.Classification, bool) {
	var docType string
	switch {
	case strings.Contains(lowered, "devec"):
		docType = "ICMS-DEVEC"
	case strings.Contains(lowered, "ldo"):
		docType = "ICMS-LDO"
	case strings.Contains(lowered, "rec"):
		docType = "ICMS-REC"
	default:
		return domain.Classification{}, false
	}

	return domain.Classification{
		DocumentType: docType,
		Period:       previousPeriodFromModification(file),
		Confidence:   85,
		Reason:       fmt.Sprintf("%s detectado no nome - usando mes anterior", docType),
	}, true
}

func classifyDocumentOrMinute(
	file domain.FileDescriptor,
	normalized string,
	tokens map[string]struct{},
) (domain.Classification, bool) {
	cartaDenuncia := hasToken(tokens, "carta") && hasToken(tokens, "denuncia")
	procuracao := hasToken(tokens, "procuracao") || strings.Contains(normalized, "procuracao")
	licenca := hasToken(tokens, "licenca") || strings.Contains(normalized, "licenca")

	anyKeyword := cartaDenuncia || hasToken(tokens, "aditivo") || hasToken(tokens, "contrato") ||
		procuracao || hasToken(tokens, "cadastro") || hasToken(tokens, "comunicado") || licenca
	if !anyKeyword {
		return domain.Classification{}, false
	}

	isMinute := hasToken(tokens, "minuta") || hasToken(tokens, "minutas") || hasToken(tokens, "min")
	prefix, label := "DOC", "Documento"
	if isMinute {
		prefix, label = "MIN", "Minuta"
	}

	var suffix, keyword string
	confidence := 90
	switch {
	case cartaDenuncia:
		suffix, keyword = "CAR", "Carta denuncia"
	case hasToken(tokens, "aditivo"):
		suffix, keyword = "ADT", "Aditivo"
	case hasToken(tokens, "contrato"):
		suffix, keyword = "CTR", "Contrato"
	case procuracao:
		suffix, keyword = "PRO", "Procuracao"
	case hasToken(tokens, "cadastro"):
		suffix, keyword = "CAD", "Cadastro"
		confidence = 70
	case hasToken(tokens, "comunicado"):
		suffix, keyword = "COM", "Comunicado"
		confidence = 70
	default:
		suffix, keyword = "LIC", "Licenca"
		confidence = 70
	}

	return domain.Classification{
		DocumentType: prefix + "-" + suffix,
		Period:       periodFromModification(file),
		Confidence:   confidence,
		Reason:       fmt.Sprintf("%s: \"%s\" - usando mes/ano da modificacao", label, keyword),
	}, true
}

func (c *Classifier) classifyReport(lowered string) domain.Classification {
	if m := reportMonthPattern.FindStringSubmatch(lowered); m != nil {
		period := "20" + m[2] + "-" + reportMonths[m[1]]
		return domain.Classification{
			DocumentType: "REL",
			Period:       period,
			Confidence:   90,
			Reason:       fmt.Sprintf("Relatorio detectado: nome contem \"relatorio\" e data %s", strings.ToUpper(m[0])),
		}
	}

	// Mirrors legacy behavior: the no-date fallback reads the clock, not
	// the file's own modification time.
	return domain.Classification{
		DocumentType: "REL",
		Period:       PreviousPeriod(c.now()),
		Confidence:   70,
		Reason:       "Relatorio detectado: nome contem \"relatorio\" - usando mes anterior",
	}
}

func periodFromModification(file domain.FileDescriptor) string {
	if file.LastModified.IsZero() {
		return ""
	}
	return FormatPeriod(file.LastModified)
}

func previousPeriodFromModification(file domain.FileDescriptor) string {
	if file.LastModified.IsZero() {
		return ""
	}
	return PreviousPeriod(file.LastModified)
}

// suggestName proposes the dedicated boleto rename. Every other type keeps
// its original file name at the destination.
func suggestName(cls domain.Classification, originalName string) string {
	if cls.DocumentType != "CCEE-BOLETOCA" || cls.Period == "" {
		return ""
	}
	return "CCEE-BOLETOCA-" + cls.Period + path.Ext(originalName)
}
