package entity

import (
	"strings"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Status estado de ciclo de vida compartido por productos, tasas y documentos.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// VehicleCondition condición del vehículo financiado.
type VehicleCondition string

const (
	VehicleNew     VehicleCondition = "NEW"
	VehicleSemiNew VehicleCondition = "SEMI_NEW"
	VehicleUsed    VehicleCondition = "USED"
)

// CalculationBasis base de días del año para el cálculo.
type CalculationBasis string

const (
	Basis360 CalculationBasis = "360"
	Basis365 CalculationBasis = "365"
)

// CalculationMethod método de cálculo del interés.
type CalculationMethod string

const (
	MethodSimple   CalculationMethod = "SIMPLE"
	MethodCompound CalculationMethod = "COMPOUND"
)

// CapitalizationFrequency frecuencia de capitalización.
type CapitalizationFrequency string

const (
	FrequencyMonthly CapitalizationFrequency = "MONTHLY"
	FrequencyAnnual  CapitalizationFrequency = "ANNUAL"
)

// Los alias aceptan los valores canónicos y los heredados del catálogo anterior.
// Las claves están ya normalizadas con fold().
var (
	statusAliases = map[string]Status{
		"active": StatusActive, "activo": StatusActive,
		"inactive": StatusInactive, "inactivo": StatusInactive,
	}
	conditionAliases = map[string]VehicleCondition{
		"new": VehicleNew, "nuevo": VehicleNew,
		"semi_new": VehicleSemiNew, "seminuevo": VehicleSemiNew,
		"used": VehicleUsed, "usado": VehicleUsed,
	}
	basisAliases = map[string]CalculationBasis{
		"360": Basis360, "360 días": Basis360, "360 dias": Basis360,
		"365": Basis365, "365 días": Basis365, "365 dias": Basis365,
	}
	methodAliases = map[string]CalculationMethod{
		"simple": MethodSimple, "compound": MethodCompound, "compuesto": MethodCompound,
	}
	frequencyAliases = map[string]CapitalizationFrequency{
		"monthly": FrequencyMonthly, "mensual": FrequencyMonthly,
		"annual": FrequencyAnnual, "anual": FrequencyAnnual,
	}
)

func fold(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(norm.NFC.String(s))), " ")
}

func parseEnum[T ~string](aliases map[string]T, entityName, field, raw string) (T, error) {
	if v, ok := aliases[fold(raw)]; ok {
		return v, nil
	}
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, domain.NewValidationError(entityName, field, domain.CodeRequired, field+" es requerido")
	}
	return zero, domain.NewValidationError(entityName, field, domain.CodeInvalidValue, "valor no válido: "+raw)
}

// ParseStatus convierte el texto de entrada en Status.
func ParseStatus(entityName, raw string) (Status, error) {
	return parseEnum(statusAliases, entityName, "status", raw)
}

// ParseVehicleCondition convierte el texto de entrada en VehicleCondition.
func ParseVehicleCondition(raw string) (VehicleCondition, error) {
	return parseEnum(conditionAliases, domain.EntityCreditProduct, "vehicle_condition", raw)
}

// ParseCalculationBasis acepta "360", "365" y las formas heredadas "360 días" / "365 días".
func ParseCalculationBasis(raw string) (CalculationBasis, error) {
	return parseEnum(basisAliases, domain.EntityInterestRate, "calculation_basis", raw)
}

// ParseCalculationMethod convierte el texto de entrada en CalculationMethod.
func ParseCalculationMethod(raw string) (CalculationMethod, error) {
	return parseEnum(methodAliases, domain.EntityInterestRate, "calculation_method", raw)
}

// ParseCapitalizationFrequency convierte el texto de entrada en CapitalizationFrequency.
func ParseCapitalizationFrequency(raw string) (CapitalizationFrequency, error) {
	return parseEnum(frequencyAliases, domain.EntityInterestRate, "capitalization_frequency", raw)
}
