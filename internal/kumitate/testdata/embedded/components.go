package embedded

type Base struct{}

//kumitate:component
type Service struct {
	Base
}
