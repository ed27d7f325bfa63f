// Package validity modela los periodos de vigencia de las tasas como intervalos
// cerrados de fechas de calendario. Un fin nil equivale a la fecha máxima.
package validity

import "cloud.google.com/go/civil"

// MaxDate fecha usada como fin efectivo de los periodos abiertos.
var MaxDate = civil.Date{Year: 9999, Month: 12, Day: 31}

// Interval periodo [Start, End]. End nil = abierto.
type Interval struct {
	Start civil.Date
	End   *civil.Date
}

// Open construye un intervalo sin fecha de fin.
func Open(start civil.Date) Interval {
	return Interval{Start: start}
}

// Closed construye un intervalo con fecha de fin.
func Closed(start, end civil.Date) Interval {
	return Interval{Start: start, End: &end}
}

// EffectiveEnd devuelve End o MaxDate si el intervalo es abierto.
func (i Interval) EffectiveEnd() civil.Date {
	if i.End == nil {
		return MaxDate
	}
	return *i.End
}

// IsOpen indica si el intervalo no tiene fecha de fin.
func (i Interval) IsOpen() bool { return i.End == nil }

// IsValid exige fechas válidas y Start <= End cuando End existe.
func (i Interval) IsValid() bool {
	if !i.Start.IsValid() {
		return false
	}
	if i.End == nil {
		return true
	}
	return i.End.IsValid() && !i.End.Before(i.Start)
}

// Contains indica si d cae dentro del intervalo (extremos incluidos).
func (i Interval) Contains(d civil.Date) bool {
	return !d.Before(i.Start) && !d.After(i.EffectiveEnd())
}

// ClosedBefore devuelve el intervalo terminado el día anterior a next.
// Es la única forma de fijar el fin de un periodo abierto.
func (i Interval) ClosedBefore(next civil.Date) Interval {
	return Closed(i.Start, next.AddDays(-1))
}

// Overlaps indica si a y b comparten al menos un día. Dos periodos que se tocan
// en el mismo día se traslapan; para encadenarlos se cierra en next-1.
func Overlaps(a, b Interval) bool {
	return !a.Start.After(b.EffectiveEnd()) && !b.Start.After(a.EffectiveEnd())
}
