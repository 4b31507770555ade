package schedule

// MealsPerDay counts the meals a plan delivers on each delivery day.
func MealsPerDay(breakfast, lunch, dinner, snacks bool) int {
	n := 0
	for _, included := range []bool{breakfast, lunch, dinner, snacks} {
		if included {
			n++
		}
	}
	return n
}

// PromisedMeals is the number of meals owed for one billing period (four weeks for monthly plans).
func PromisedMeals(mealsPerDay int, weekdays Weekdays, freq Frequency) int {
	weekly := mealsPerDay * weekdays.Count()
	if freq == FrequencyMonthly {
		return weekly * 4
	}
	return weekly
}
