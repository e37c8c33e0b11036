package config

type Google struct {
	ProjectID       string `env:"GOOGLE_CLOUD_PROJECT" envDefault:"agiliz-sales-tool"`
	Region          string `env:"GOOGLE_CLOUD_REGION" envDefault:"europe-west1"`
	Dataset         string `env:"BIGQUERY_DATASET" envDefault:"zoektrends_job_data"`
	CredentialsPath string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}
