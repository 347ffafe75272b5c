package seeder

func Defaults() []Seeder {
	return []Seeder{
		LookupsSeeder{},
		UsersSeeder{},
		JobsSeeder{},
		InteractionsSeeder{},
	}
}
