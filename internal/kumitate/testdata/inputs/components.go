package inputs

type A struct{}

type B struct{}

//kumitate:component input=A
type First struct{}

//kumitate:component input=B
type Second struct{}
