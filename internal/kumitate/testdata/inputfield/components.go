package inputfield

type Settings struct {
	Addr string
}

//kumitate:component input=Settings
type Service struct {
	Port int `kumitate:"input:Port"`
}
