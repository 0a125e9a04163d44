package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrMissingKeyCondition = errors.New("query needs a key condition")

// API is the part of the DynamoDB client the wrapper uses.
type API interface {
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// Condition is an equality test on one attribute.
type Condition struct {
	Key   string
	Value any
}

// Page is one page of a scan or query.
type Page struct {
	Items            []map[string]any
	LastEvaluatedKey map[string]types.AttributeValue
}

type TableMetadata struct {
	ItemCount              int64
	PrimaryKeyName         string
	Status                 string
	SizeBytes              int64
	GlobalSecondaryIndexes []string
}

type Client struct {
	api API
}

func New(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a client from the default AWS credential chain.
func NewFromConfig(ctx context.Context, region, endpoint string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})), nil
}

func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	p := dynamodb.NewListTablesPaginator(c.api, &dynamodb.ListTablesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

func (c *Client) TableMetadata(ctx context.Context, table string) (TableMetadata, error) {
	out, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		return TableMetadata{}, fmt.Errorf("describe %s: %w", table, err)
	}
	d := out.Table
	meta := TableMetadata{
		ItemCount: aws.ToInt64(d.ItemCount),
		Status:    string(d.TableStatus),
		SizeBytes: aws.ToInt64(d.TableSizeBytes),
	}
	for _, k := range d.KeySchema {
		if k.KeyType == types.KeyTypeHash {
			meta.PrimaryKeyName = aws.ToString(k.AttributeName)
		}
	}
	for _, idx := range d.GlobalSecondaryIndexes {
		meta.GlobalSecondaryIndexes = append(meta.GlobalSecondaryIndexes, aws.ToString(idx.IndexName))
	}
	return meta, nil
}

func key(pkName string, pkValue any) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.Marshal(pkValue)
	if err != nil {
		return nil, fmt.Errorf("marshal key %s: %w", pkName, err)
	}
	return map[string]types.AttributeValue{pkName: av}, nil
}

// GetItem reads the item with the given primary key into out and reports whether it exists.
func (c *Client) GetItem(ctx context.Context, table, pkName string, pkValue, out any) (bool, error) {
	k, err := key(pkName, pkValue)
	if err != nil {
		return false, err
	}
	res, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(table), Key: k})
	if err != nil {
		return false, fmt.Errorf("get %s: %w", table, err)
	}
	if res.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal %s item: %w", table, err)
	}
	return true, nil
}

func (c *Client) PutItem(ctx context.Context, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", table, err)
	}
	if _, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(table), Item: av}); err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, table, pkName string, pkValue any) error {
	k, err := key(pkName, pkValue)
	if err != nil {
		return err
	}
	if _, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(table), Key: k}); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// UpdateItem applies update to the item and returns the attributes it changed.
func (c *Client) UpdateItem(ctx context.Context, table, pkName string, pkValue any, update expression.UpdateBuilder) (map[string]any, error) {
	k, err := key(pkName, pkValue)
	if err != nil {
		return nil, err
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	out, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       k,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	var attrs map[string]any
	if err := attributevalue.UnmarshalMap(out.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal %s attributes: %w", table, err)
	}
	return attrs, nil
}
