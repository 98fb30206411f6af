package cycle

//kumitate:component
type A struct {
	B *B
}

//kumitate:component
type B struct {
	A *A
}
