package models

// OriginMeta - справочные данные о вызывающей стороне для журнала решений
type OriginMeta struct {
	IPAddress string
	UserAgent string
}
