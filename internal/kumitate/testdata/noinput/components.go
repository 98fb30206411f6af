package noinput

//kumitate:component
type Service struct {
	Addr string `kumitate:"input:Addr"`
}
