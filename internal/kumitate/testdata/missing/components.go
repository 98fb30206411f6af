package missing

type Repository struct {
	DSN string
}

//kumitate:component
type Service struct {
	Repo *Repository
}
