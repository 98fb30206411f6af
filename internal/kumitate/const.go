package kumitate

const (
	runtimePkgPath = "github.com/nitohi/kumitate"
	runtimePkgName = "kumitate"

	directiveName = "kumitate:component"
	tagKey        = "kumitate"
)
