package kvstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gigapi/gigapi-metastore/core"
)

func toPage(items []map[string]types.AttributeValue, last map[string]types.AttributeValue) (Page, error) {
	page := Page{LastEvaluatedKey: last}
	if err := attributevalue.UnmarshalListOfMaps(items, &page.Items); err != nil {
		return Page{}, fmt.Errorf("unmarshal items: %w", err)
	}
	return page, nil
}

func (c *Client) scanInput(table string, filter *Condition) (*dynamodb.ScanInput, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(table)}
	if filter == nil {
		return in, nil
	}
	cond := expression.Name(filter.Key).Equal(expression.Value(filter.Value))
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	in.FilterExpression = expr.Filter()
	in.ExpressionAttributeNames = expr.Names()
	in.ExpressionAttributeValues = expr.Values()
	return in, nil
}

// Scan reads one page of table, starting after startKey when it is set.
func (c *Client) Scan(ctx context.Context, table string, filter *Condition, startKey map[string]types.AttributeValue) (Page, error) {
	in, err := c.scanInput(table, filter)
	if err != nil {
		return Page{}, err
	}
	in.ExclusiveStartKey = startKey
	out, err := c.api.Scan(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("scan %s: %w", table, err)
	}
	return toPage(out.Items, out.LastEvaluatedKey)
}

// ScanAll follows LastEvaluatedKey until the table is exhausted.
func (c *Client) ScanAll(ctx context.Context, table string, filter *Condition) ([]map[string]any, error) {
	in, err := c.scanInput(table, filter)
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	for {
		out, err := c.api.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		page, err := toPage(out.Items, out.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		core.Debugf(ctx, "scan %s: %d items in page", table, len(page.Items))
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (c *Client) queryInput(table string, cond Condition, index string) (*dynamodb.QueryInput, error) {
	if cond.Key == "" || cond.Value == nil {
		return nil, ErrMissingKeyCondition
	}
	kc := expression.Key(cond.Key).Equal(expression.Value(cond.Value))
	expr, err := expression.NewBuilder().WithKeyCondition(kc).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if index != "" {
		in.IndexName = aws.String(index)
	}
	return in, nil
}

// Query reads one page of items matching cond, optionally through a secondary index.
func (c *Client) Query(ctx context.Context, table string, cond Condition, index string, startKey map[string]types.AttributeValue) (Page, error) {
	in, err := c.queryInput(table, cond, index)
	if err != nil {
		return Page{}, err
	}
	in.ExclusiveStartKey = startKey
	out, err := c.api.Query(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("query %s: %w", table, err)
	}
	return toPage(out.Items, out.LastEvaluatedKey)
}

func (c *Client) QueryAll(ctx context.Context, table string, cond Condition, index string) ([]map[string]any, error) {
	in, err := c.queryInput(table, cond, index)
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	for {
		out, err := c.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		page, err := toPage(out.Items, out.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		core.Debugf(ctx, "query %s: %d items in page", table, len(page.Items))
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		core.Debugf(ctx, "query %s: next page after %v", table, out.LastEvaluatedKey)
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
