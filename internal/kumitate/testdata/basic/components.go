package basic

//kumitate:component
type Config struct {
	Name    string `kumitate:"value:\"basic\""`
	Verbose bool   `kumitate:"value:true"`
}

//kumitate:component
type Database struct {
	Config *Config
}

//kumitate:component
type Service struct {
	DB     *Database `kumitate:"get"`
	Config *Config
}

//kumitate:component
type App struct {
	Service *Service
	Scratch Database `kumitate:"build"`
}
