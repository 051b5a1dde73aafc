package excel

import (
	"strconv"
)

// ValueKind 单元格取值类别
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindFormula
	KindError
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindFormula:
		return "formula"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value 单元格值。只能通过 EmptyValue / NumberValue / TextValue / ErrorValue / FormulaValue 构造。
type Value struct {
	kind    ValueKind
	number  float64
	text    string // 文本内容或错误码（如 #DIV/0!）
	formula string
	cached  *Value
}

// EmptyValue 空值
func EmptyValue() Value {
	return Value{kind: KindEmpty}
}

// NumberValue 数值
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, number: n}
}

// TextValue 文本
func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

// ErrorValue 错误值，code 为 Excel 错误码
func ErrorValue(code string) Value {
	return Value{kind: KindError, text: code}
}

// FormulaValue 公式及其缓存结果。缓存结果本身不会是公式。
func FormulaValue(formula string, cached Value) Value {
	if cached.kind == KindFormula {
		cached = cached.Cached()
	}
	return Value{kind: KindFormula, formula: formula, cached: &cached}
}

// Kind 取值类别
func (v Value) Kind() ValueKind {
	return v.kind
}

// Formula 公式文本（非公式为空）
func (v Value) Formula() string {
	return v.formula
}

// Cached 公式的缓存结果（非公式返回空值）
func (v Value) Cached() Value {
	if v.kind != KindFormula || v.cached == nil {
		return EmptyValue()
	}
	return *v.cached
}

// Text 文本内容（仅 KindText 有意义）
func (v Value) Text() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// ErrorCode 错误码；公式缓存结果为错误时也返回该错误码
func (v Value) ErrorCode() string {
	switch v.kind {
	case KindError:
		return v.text
	case KindFormula:
		return v.Cached().ErrorCode()
	case KindEmpty, KindNumber, KindText:
		return ""
	}
	return ""
}

// Numeric 返回可参与合并的数值；公式取缓存结果
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.number, true
	case KindFormula:
		return v.Cached().Numeric()
	case KindEmpty, KindText, KindError:
		return 0, false
	}
	return 0, false
}

// Display 展示文本：公式显示缓存结果，错误显示错误码
func (v Value) Display() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindText:
		return v.text
	case KindError:
		return v.text
	case KindFormula:
		return v.Cached().Display()
	}
	return ""
}

// Cell 解析后的单元格。Address 为请求的坐标，Master 为实际存值的坐标
// （合并单元格的从属格指向主格）。
type Cell struct {
	Address Coordinate
	Master  Coordinate
	Value   Value
}

// IsMergeFollower 是否为合并单元格中的从属格
func (c Cell) IsMergeFollower() bool {
	return c.Address != c.Master
}
