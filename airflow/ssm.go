package airflow

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Environment variables overriding Airflow discovery.
const (
	EnvAPIURL  = "AIRFLOW_API_URL"
	EnvDAGName = "AIRFLOW_DAG_NAME"
)

// ParameterGetter is the slice of the SSM API used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// apiURLParameter is where the venue publishes its Airflow API endpoint.
func apiURLParameter(project, venue string) string {
	return fmt.Sprintf("/%s/%s/sps/processing/airflow/api_url", project, venue)
}

// APIURLFromSSM reads the venue's Airflow API URL from the parameter store.
func APIURLFromSSM(ctx context.Context, params ParameterGetter, project, venue string) (string, error) {
	name := apiURLParameter(project, venue)
	out, err := params.GetParameter(ctx, &ssm.GetParameterInput{Name: &name})
	if err != nil {
		return "", fmt.Errorf("airflow: read parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("airflow: parameter %s has no value", name)
	}
	return *out.Parameter.Value, nil
}

// ResolveAPIURL returns the Airflow API URL for the project/venue: the
// AIRFLOW_API_URL environment override when set, otherwise the SSM
// parameter published by the venue.
func ResolveAPIURL(ctx context.Context, project, venue string) (string, error) {
	if apiURL := os.Getenv(EnvAPIURL); apiURL != "" {
		return apiURL, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("airflow: load AWS config: %w", err)
	}
	return APIURLFromSSM(ctx, ssm.NewFromConfig(cfg), project, venue)
}

// DAGName returns the DAG to trigger, honoring the AIRFLOW_DAG_NAME
// override.
func DAGName() string {
	if name := os.Getenv(EnvDAGName); name != "" {
		return name
	}
	return DefaultDAGName
}
