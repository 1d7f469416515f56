package memory

import "fmt"

const pdfHost = "https://provas.example.com"

// Seed fills db with a small archive: three terms (the last one empty), the five usual categories
// and a few teachers sharing disciplines.
func Seed(db *DB) {
	cats := map[string]int{}
	for _, name := range []string{"P1", "P2", "P3", "2ch", "Outras"} {
		cats[name] = db.AddCategory(name)
	}

	first, second := db.AddTerm(1), db.AddTerm(2)
	db.AddTerm(3)

	ana := db.AddTeacher("Ana Souza")
	bruno := db.AddTeacher("Bruno Lima")
	carla := db.AddTeacher("Carla Dias")

	calc := db.AddDiscipline("Cálculo I", first)
	phys := db.AddDiscipline("Física I", first)
	algo := db.AddDiscipline("Algoritmos", second)
	db.AddDiscipline("Estatística", second)

	seedTests(db, db.Assign(ana, calc), cats, []string{"P1", "P2"}, 3)
	seedTests(db, db.Assign(bruno, calc), cats, []string{"P1", "P3", "2ch"}, 0)
	seedTests(db, db.Assign(bruno, phys), cats, []string{"P2"}, 1)
	seedTests(db, db.Assign(carla, algo), cats, []string{"P1", "Outras"}, 0)
}

func seedTests(db *DB, tdID int, cats map[string]int, names []string, views int) {
	for i, name := range names {
		url := fmt.Sprintf("%s/%d/%s.pdf", pdfHost, tdID, name)
		db.AddTest(fmt.Sprintf("%d.%d", 2020+i, tdID%2+1), url, cats[name], tdID, views*i)
	}
}
