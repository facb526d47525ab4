package models

type FactRow struct {
	Year                 int     `json:"year"`
	Region               string  `json:"region"`
	Product              string  `json:"product"`
	Sales                int     `json:"sales"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	CO2Reduction         float64 `json:"co2_reduction"`
	ProductionCost       float64 `json:"production_cost"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
}

// ColoredFactRow is a filtered fact row with the region's color index
// appended.
type ColoredFactRow struct {
	FactRow
	RegionColor int `json:"region_color"`
}

// GeoImpact is one group of the (region, product, latitude, longitude)
// aggregate.
type GeoImpact struct {
	Region               string  `json:"region"`
	Product              string  `json:"product"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Sales                int     `json:"sales"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	CO2Reduction         float64 `json:"co2_reduction"`
	ProductionCost       float64 `json:"production_cost"`
	Rows                 int     `json:"rows"`
}

// ProductionSummary is one group of the (region, product) aggregate.
// Sales, CO2Reduction and ProductionCost are sums; CustomerSatisfaction
// is a mean.
type ProductionSummary struct {
	Region               string  `json:"region"`
	Product              string  `json:"product"`
	Sales                int     `json:"sales"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	CO2Reduction         float64 `json:"co2_reduction"`
	ProductionCost       float64 `json:"production_cost"`
	TotalProduction      float64 `json:"total_production"`
}

// SalesPivot holds summed sales with Regions as rows and Years as
// columns. Cells[i][j] belongs to Regions[i] and Years[j].
type SalesPivot struct {
	Regions []string `json:"regions"`
	Years   []int    `json:"years"`
	Cells   [][]int  `json:"cells"`
}

type RegionCO2 struct {
	Region       string  `json:"region"`
	CO2Reduction float64 `json:"co2_reduction"`
	Rows         int     `json:"rows"`
}

type SunburstNode struct {
	ID                   string  `json:"id"`
	Label                string  `json:"label"`
	Parent               string  `json:"parent"`
	Sales                int     `json:"sales"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
}

// ProductProfile holds the four metric means of a product scaled to
// [0, 1] across all products.
type ProductProfile struct {
	Product              string  `json:"product"`
	Sales                float64 `json:"sales"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	CO2Reduction         float64 `json:"co2_reduction"`
	ProductionCost       float64 `json:"production_cost"`
}

type Distribution struct {
	Label   string      `json:"label"`
	Samples []float64   `json:"samples"`
	Mean    float64     `json:"mean"`
	Q1      float64     `json:"q1"`
	Median  float64     `json:"median"`
	Q3      float64     `json:"q3"`
	Density []CurvePair `json:"density"`
}

type CurvePair struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
