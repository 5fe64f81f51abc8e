package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"biolink/internal/platform/config"
)

// dynamoItem is the stored shape: one item per key, versioned for conditional writes.
type dynamoItem struct {
	Key     string `dynamodbav:"pk"`
	Value   []byte `dynamodbav:"val"`
	Version int64  `dynamodbav:"ver"`
}

// dynamoAPI is the subset of *dynamodb.Client the store calls.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	dynamodb.ScanAPIClient
}

// DynamoStore keeps records in a single table keyed by "pk".
type DynamoStore struct {
	svc   dynamoAPI
	table string
}

func NewDynamoStore(ctx context.Context, cfg config.DynamoDBConfig) (*DynamoStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &DynamoStore{
		svc:   dynamodb.NewFromConfig(awsCfg, clientOpts...),
		table: cfg.Table,
	}, nil
}

func keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: key}}
}

func (s *DynamoStore) getItem(ctx context.Context, key string) (*dynamoItem, error) {
	res, err := s.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            keyAttr(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", key, err)
	}
	if res.Item == nil {
		return nil, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(res.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &item, nil
}

func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	item, err := s.getItem(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item.Value, nil
}

// Set is a versioned write like Update, so it never reuses a version a concurrent writer took.
func (s *DynamoStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, key, func([]byte) ([]byte, error) {
		return value, nil
	})
}

// put writes item only if the stored version still equals expectVersion (0: absent).
func (s *DynamoStore) put(ctx context.Context, item *dynamoItem, expectVersion int64) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}
	if expectVersion == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(pk)")
	} else {
		input.ConditionExpression = aws.String("ver = :ver")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":ver": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectVersion, 10)},
		}
	}

	if _, err := s.svc.PutItem(ctx, input); err != nil {
		return fmt.Errorf("put item %s: %w", item.Key, err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.svc.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttr(key),
	})
	if err != nil {
		return fmt.Errorf("delete item %s: %w", key, err)
	}
	return nil
}

func (s *DynamoStore) Exists(ctx context.Context, key string) (bool, error) {
	item, err := s.getItem(ctx, key)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

func (s *DynamoStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	input := &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		FilterExpression:     aws.String("begins_with(pk, :prefix)"),
		ProjectionExpression: aws.String("pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	}

	paginator := dynamodb.NewScanPaginator(s.svc, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		for _, it := range page.Items {
			if v, ok := it["pk"].(*types.AttributeValueMemberS); ok {
				keys = append(keys, v.Value)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Update is optimistic: read the version, write conditionally, retry on conflict.
func (s *DynamoStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for i := 0; i < maxUpdateRetries; i++ {
		item, err := s.getItem(ctx, key)
		if err != nil {
			return err
		}

		var current []byte
		var version int64
		if item != nil {
			current = item.Value
			version = item.Version
		}

		next, err := fn(current)
		if err != nil {
			if errors.Is(err, ErrSkip) {
				return nil
			}
			return err
		}

		err = s.put(ctx, &dynamoItem{Key: key, Value: next, Version: version + 1}, version)
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			continue
		}
		return err
	}
	return fmt.Errorf("dynamodb update %s: too much contention", key)
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.svc.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}

func (s *DynamoStore) Close() error { return nil }
