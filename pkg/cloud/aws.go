package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"
)

// STS is global; this region is used only when the credential chain names none.
const fallbackSTSRegion = "us-east-1"

var liveInstanceStates = []string{
	string(ec2types.InstanceStateNamePending),
	string(ec2types.InstanceStateNameRunning),
}

// awsProvider implements Provider with EKS, STS and EC2. Clients are built per
// call from the explicit credentials and region, never from shared state.
type awsProvider struct{}

// loadConfig resolves the default credential chain for creds, bound to region.
func (p *awsProvider) loadConfig(ctx context.Context, creds CredentialsContext, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if creds.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(creds.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	if creds.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(creds.EndpointURL)
	}
	return cfg, nil
}

// ListClusters returns every EKS cluster name in region, following pagination.
func (p *awsProvider) ListClusters(ctx context.Context, creds CredentialsContext, region string) ([]string, error) {
	cfg, err := p.loadConfig(ctx, creds, region)
	if err != nil {
		return nil, err
	}

	var clusters []string
	pager := eks.NewListClustersPaginator(eks.NewFromConfig(cfg), &eks.ListClustersInput{})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, apiError(fmt.Sprintf("list clusters in %s", region), err)
		}
		clusters = append(clusters, page.Clusters...)
	}

	log.Debugf("found %d EKS cluster(s) in %s", len(clusters), region)
	return clusters, nil
}

// CallerAccount returns the account ID of the active credentials.
func (p *awsProvider) CallerAccount(ctx context.Context, creds CredentialsContext) (string, error) {
	cfg, err := p.loadConfig(ctx, creds, "")
	if err != nil {
		return "", err
	}
	if cfg.Region == "" {
		cfg.Region = fallbackSTSRegion
	}

	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", apiError("get caller identity", err)
	}

	account := aws.ToString(out.Account)
	if account == "" {
		return "", errors.New("get caller identity: response has no account")
	}
	return account, nil
}

// ClusterInstances returns pending and running EC2 instances carrying the
// cluster's ownership tag key in region.
func (p *awsProvider) ClusterInstances(
	ctx context.Context,
	creds CredentialsContext,
	region, cluster string,
) ([]Instance, error) {
	cfg, err := p.loadConfig(ctx, creds, region)
	if err != nil {
		return nil, err
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag-key"), Values: []string{OwnershipTagKey(cluster)}},
			{Name: aws.String("instance-state-name"), Values: liveInstanceStates},
		},
	}

	var instances []Instance
	pager := ec2.NewDescribeInstancesPaginator(ec2.NewFromConfig(cfg), input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, apiError(fmt.Sprintf("describe instances for cluster %s in %s", cluster, region), err)
		}
		for _, reservation := range page.Reservations {
			for i := range reservation.Instances {
				instances = append(instances, fromEC2(&reservation.Instances[i]))
			}
		}
	}

	log.Debugf("found %d instance(s) for cluster %s in %s", len(instances), cluster, region)
	return instances, nil
}

func fromEC2(instance *ec2types.Instance) Instance {
	tags := make(map[string]string, len(instance.Tags))
	for _, tag := range instance.Tags {
		if tag.Key == nil {
			continue
		}
		tags[*tag.Key] = aws.ToString(tag.Value)
	}
	return Instance{
		ID:       aws.ToString(instance.InstanceId),
		Type:     string(instance.InstanceType),
		Provider: ProviderAWS,
		Tags:     tags,
	}
}

// apiError annotates err with op and, when the failure came from the AWS API,
// its error code.
func apiError(op string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("%s: %s: %w", op, ae.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nolint:gochecknoinits // registration-style init keeps provider wiring local to this file.
func init() {
	RegisterProvider(ProviderAWS, func() Provider { return &awsProvider{} })
}
