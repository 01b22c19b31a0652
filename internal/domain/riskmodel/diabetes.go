package riskmodel

import (
	"encoding/csv"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Pima dataset feature order: pregnancies, glucose, blood pressure, skin
// thickness, insulin, BMI, pedigree function, age.
const numFeatures = 8

const (
	syntheticSeed    = 42
	syntheticSamples = 768

	trainEpochs       = 300
	trainLearningRate = 0.1
)

// DiabetesInput carries the classifier features. Missing fields fall back to
// population-typical defaults.
type DiabetesInput struct {
	Pregnancies              *float64 `json:"pregnancies,omitempty"`
	Glucose                  *float64 `json:"glucose,omitempty"`
	BloodPressure            *float64 `json:"blood_pressure,omitempty"`
	SkinThickness            *float64 `json:"skin_thickness,omitempty"`
	Insulin                  *float64 `json:"insulin,omitempty"`
	BMI                      *float64 `json:"bmi,omitempty"`
	DiabetesPedigreeFunction *float64 `json:"diabetes_pedigree_function,omitempty"`
	Age                      *float64 `json:"age,omitempty"`
}

type DiabetesResult struct {
	Probability    float64 `json:"stability_score"`
	DiagnosisLabel string  `json:"diagnosis_label"`
	RiskLevel      string  `json:"risk_level"`
}

// DiabetesModel is a standardized linear classifier trained once at startup.
// Training data comes from the public Pima Indians dataset when reachable,
// otherwise from a deterministic synthetic sample with the same shape.
type DiabetesModel struct {
	mean    [numFeatures]float64
	std     [numFeatures]float64
	weights [numFeatures]float64
	bias    float64
}

// NewDiabetesModel trains the classifier. It never fails: any problem loading
// the remote dataset falls back to synthetic training data.
func NewDiabetesModel(csvURL string) *DiabetesModel {
	features, labels, err := loadDataset(csvURL)
	if err != nil {
		log.Warn().Err(err).Msg("diabetes dataset unavailable, training on synthetic data")
		features, labels = syntheticDataset()
	} else {
		log.Info().Int("samples", len(features)).Msg("diabetes dataset loaded")
	}

	m := &DiabetesModel{}
	m.fitScaler(features)
	m.train(features, labels)
	return m
}

func loadDataset(url string) ([][numFeatures]float64, []float64, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = numFeatures + 1

	var features [][numFeatures]float64
	var labels []float64
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for _, rec := range records {
		var row [numFeatures]float64
		ok := true
		for i := 0; i < numFeatures; i++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				ok = false
				break
			}
			row[i] = v
		}
		if !ok {
			continue
		}
		label, err := strconv.ParseFloat(rec[numFeatures], 64)
		if err != nil {
			continue
		}
		features = append(features, row)
		labels = append(labels, label)
	}
	if len(features) < 100 {
		return nil, nil, errTooFewSamples
	}
	return features, labels, nil
}

var errTooFewSamples = &datasetError{"dataset has too few usable rows"}

type datasetError struct{ msg string }

func (e *datasetError) Error() string { return e.msg }

// syntheticDataset mirrors the marginal distributions of the Pima dataset and
// derives the outcome from glucose, BMI, age and blood pressure so the trained
// weights point the clinically expected way.
func syntheticDataset() ([][numFeatures]float64, []float64) {
	rng := rand.New(rand.NewSource(syntheticSeed))

	features := make([][numFeatures]float64, syntheticSamples)
	labels := make([]float64, syntheticSamples)
	for i := range features {
		glucose := rng.NormFloat64()*30 + 120
		bp := rng.NormFloat64()*15 + 70
		bmi := rng.NormFloat64()*8 + 32
		age := rng.NormFloat64()*12 + 33

		features[i] = [numFeatures]float64{
			float64(poisson(rng, 3)),
			glucose,
			bp,
			rng.NormFloat64()*10 + 20,
			rng.NormFloat64()*40 + 80,
			bmi,
			rng.ExpFloat64() * 0.5,
			age,
		}

		risk := 0.0
		if glucose > 140 {
			risk += 0.4
		}
		if bmi > 30 {
			risk += 0.3
		}
		if age > 50 {
			risk += 0.2
		}
		if bp > 80 {
			risk += 0.1
		}
		if risk+rng.NormFloat64()*0.2 > 0.5 {
			labels[i] = 1
		}
	}
	return features, labels
}

func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func (m *DiabetesModel) fitScaler(features [][numFeatures]float64) {
	n := float64(len(features))
	for _, row := range features {
		for i, v := range row {
			m.mean[i] += v
		}
	}
	for i := range m.mean {
		m.mean[i] /= n
	}
	for _, row := range features {
		for i, v := range row {
			d := v - m.mean[i]
			m.std[i] += d * d
		}
	}
	for i := range m.std {
		m.std[i] = math.Sqrt(m.std[i] / n)
		if m.std[i] == 0 {
			m.std[i] = 1
		}
	}
}

// train runs full-batch logistic regression. Deterministic for a given
// dataset, so restarts produce identical predictions.
func (m *DiabetesModel) train(features [][numFeatures]float64, labels []float64) {
	standardized := make([][numFeatures]float64, len(features))
	for i, row := range features {
		standardized[i] = m.standardize(row)
	}

	n := float64(len(standardized))
	for epoch := 0; epoch < trainEpochs; epoch++ {
		var gradW [numFeatures]float64
		var gradB float64
		for i, row := range standardized {
			err := sigmoid(m.margin(row)) - labels[i]
			for j, v := range row {
				gradW[j] += err * v
			}
			gradB += err
		}
		for j := range m.weights {
			m.weights[j] -= trainLearningRate * gradW[j] / n
		}
		m.bias -= trainLearningRate * gradB / n
	}
}

func (m *DiabetesModel) standardize(row [numFeatures]float64) [numFeatures]float64 {
	var out [numFeatures]float64
	for i, v := range row {
		out[i] = (v - m.mean[i]) / m.std[i]
	}
	return out
}

func (m *DiabetesModel) margin(standardized [numFeatures]float64) float64 {
	sum := m.bias
	for i, v := range standardized {
		sum += m.weights[i] * v
	}
	return sum
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// Predict returns the diabetes probability with the banded risk level and
// diagnosis label.
func (m *DiabetesModel) Predict(in DiabetesInput) DiabetesResult {
	row := [numFeatures]float64{
		orDefault(in.Pregnancies, 0),
		orDefault(in.Glucose, 100),
		orDefault(in.BloodPressure, 70),
		orDefault(in.SkinThickness, 20),
		orDefault(in.Insulin, 80),
		orDefault(in.BMI, 25),
		orDefault(in.DiabetesPedigreeFunction, 0.3),
		orDefault(in.Age, 30),
	}

	probability := sigmoid(m.margin(m.standardize(row)))

	var riskLevel string
	switch {
	case probability < 0.3:
		riskLevel = "Low Risk"
	case probability < 0.7:
		riskLevel = "Medium Risk"
	default:
		riskLevel = "High Risk"
	}

	label := "The person is not diabetic"
	if probability >= 0.5 {
		label = "The person is diabetic"
	}

	return DiabetesResult{
		Probability:    probability,
		DiagnosisLabel: label,
		RiskLevel:      riskLevel,
	}
}

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
