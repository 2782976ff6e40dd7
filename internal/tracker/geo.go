package tracker

// GeoResolver определяет страну и город по IP. Точка расширения: по
// умолчанию подключен noopGeo, который возвращает пустые значения.
type GeoResolver interface {
	Resolve(ip string) (country, city string)
}

type noopGeo struct{}

func (noopGeo) Resolve(string) (string, string) { return "", "" }
