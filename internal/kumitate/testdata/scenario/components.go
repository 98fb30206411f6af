package scenario

type Settings struct {
	TheString string
}

//kumitate:component input=Settings
type Foo struct {
	FromInput string `kumitate:"input:TheString"`
}

//kumitate:component
type Bar struct {
	Foo *Foo
}
