// Package dynamodb stores map documents in a single DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	apperrors "mindgraph/pkg/errors"
)

const (
	entityTypeMap = "MINDMAP"
	documentSK    = "DOCUMENT"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// MapRepository implements ports.MapRepository. Each map is one item:
// PK=MAP#<fileID>, SK=DOCUMENT, with the whole document nested under
// Document.
type MapRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

func NewMapRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *MapRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

type mapItem struct {
	PK         string       `dynamodbav:"PK"`
	SK         string       `dynamodbav:"SK"`
	EntityType string       `dynamodbav:"EntityType"`
	FileID     string       `dynamodbav:"FileID"`
	Name       string       `dynamodbav:"Name"`
	UpdatedAt  string       `dynamodbav:"UpdatedAt"`
	Document   documentItem `dynamodbav:"Document"`
}

type metaItem struct {
	FileID    string `dynamodbav:"FileID"`
	Name      string `dynamodbav:"Name"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

type documentItem struct {
	ID              string     `dynamodbav:"ID"`
	Name            string     `dynamodbav:"Name"`
	CreatedAt       string     `dynamodbav:"CreatedAt"`
	UpdatedAt       string     `dynamodbav:"UpdatedAt"`
	LayoutDirection string     `dynamodbav:"LayoutDirection"`
	Nodes           []nodeItem `dynamodbav:"Nodes"`
	Edges           []edgeItem `dynamodbav:"Edges"`
}

type nodeItem struct {
	ID      string  `dynamodbav:"ID"`
	Content string  `dynamodbav:"Content"`
	X       float64 `dynamodbav:"X"`
	Y       float64 `dynamodbav:"Y"`
	Width   float64 `dynamodbav:"Width,omitempty"`
	Height  float64 `dynamodbav:"Height,omitempty"`
}

type edgeItem struct {
	ID           string `dynamodbav:"ID"`
	Source       string `dynamodbav:"Source"`
	Target       string `dynamodbav:"Target"`
	SourceHandle string `dynamodbav:"SourceHandle,omitempty"`
	TargetHandle string `dynamodbav:"TargetHandle,omitempty"`
	Label        string `dynamodbav:"Label,omitempty"`
}

func mapKey(fileID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "MAP#" + fileID},
		"SK": &types.AttributeValueMemberS{Value: documentSK},
	}
}

// List scans for map items and returns their metadata, most recently
// updated first
func (r *MapRepository) List(ctx context.Context) ([]ports.MapMeta, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTypeMap))
	projection := expression.NamesList(expression.Name("FileID"), expression.Name("Name"), expression.Name("UpdatedAt"))
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(projection).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build scan expression").WithCause(err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var out []ports.MapMeta
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logAWSError("scan", err)
			return nil, apperrors.NewDatabaseError("list maps", err)
		}
		var metas []metaItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &metas); err != nil {
			return nil, apperrors.NewInternalError("failed to unmarshal map list").WithCause(err)
		}
		for _, m := range metas {
			updated, _ := time.Parse(time.RFC3339Nano, m.UpdatedAt)
			out = append(out, ports.MapMeta{FileID: m.FileID, Name: m.Name, UpdatedAt: updated})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	r.logger.Debug("Listed maps", zap.Int("count", len(out)))
	return out, nil
}

func (r *MapRepository) Load(ctx context.Context, fileID string) (*aggregates.MindMap, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            mapKey(fileID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logAWSError("get", err)
		return nil, apperrors.NewDatabaseError("load map", err)
	}
	if len(result.Item) == 0 {
		return nil, apperrors.NewNotFoundError("map").WithDetail("fileId", fileID)
	}

	var item mapItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal map").WithCause(err)
	}
	m, err := fromDocument(item.Document)
	if err != nil {
		return nil, apperrors.NewInternalError("stored map is corrupt").WithCause(err).WithDetail("fileId", fileID)
	}
	return m, nil
}

// Save writes the whole document. A missing fileID is replaced by a new
// random one.
func (r *MapRepository) Save(ctx context.Context, m *aggregates.MindMap, fileID string) (string, error) {
	if m == nil {
		return "", apperrors.NewValidationError("map is required")
	}
	if fileID == "" {
		fileID = uuid.New().String()
	}

	item := mapItem{
		PK:         "MAP#" + fileID,
		SK:         documentSK,
		EntityType: entityTypeMap,
		FileID:     fileID,
		Name:       m.Name,
		UpdatedAt:  r.now().UTC().Format(time.RFC3339Nano),
		Document:   toDocument(m),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal map").WithCause(err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logAWSError("put", err)
		return "", apperrors.NewDatabaseError("save map", err)
	}

	r.logger.Info("Saved map to DynamoDB",
		zap.String("fileID", fileID),
		zap.String("mapID", m.ID.String()),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("edges", len(m.Edges)),
	)
	return fileID, nil
}

// Delete removes a map. Deleting a map that does not exist is NOT_FOUND.
func (r *MapRepository) Delete(ctx context.Context, fileID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete condition").WithCause(err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      mapKey(fileID),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperrors.NewNotFoundError("map").WithDetail("fileId", fileID)
		}
		r.logAWSError("delete", err)
		return apperrors.NewDatabaseError("delete map", err)
	}

	r.logger.Info("Deleted map from DynamoDB", zap.String("fileID", fileID))
	return nil
}

func (r *MapRepository) logAWSError(op string, err error) {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("table", r.tableName),
		zap.Error(err),
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.String("awsCode", apiErr.ErrorCode()),
			zap.String("fault", apiErr.ErrorFault().String()),
		)
	}
	r.logger.Error("DynamoDB request failed", fields...)
}

func toDocument(m *aggregates.MindMap) documentItem {
	doc := documentItem{
		ID:              m.ID.String(),
		Name:            m.Name,
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       m.UpdatedAt.UTC().Format(time.RFC3339Nano),
		LayoutDirection: string(m.LayoutDirection),
		Nodes:           make([]nodeItem, 0, len(m.Nodes)),
		Edges:           make([]edgeItem, 0, len(m.Edges)),
	}
	for _, n := range m.Nodes {
		doc.Nodes = append(doc.Nodes, nodeItem{
			ID:      n.ID.String(),
			Content: n.Content,
			X:       n.Position.X,
			Y:       n.Position.Y,
			Width:   n.Width,
			Height:  n.Height,
		})
	}
	for _, e := range m.Edges {
		doc.Edges = append(doc.Edges, edgeItem{
			ID:           e.ID.String(),
			Source:       e.Source.String(),
			Target:       e.Target.String(),
			SourceHandle: string(e.SourceHandle),
			TargetHandle: string(e.TargetHandle),
			Label:        e.Label,
		})
	}
	return doc
}

func fromDocument(doc documentItem) (*aggregates.MindMap, error) {
	created, err := time.Parse(time.RFC3339Nano, doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updatedAt: %w", err)
	}

	m := &aggregates.MindMap{
		ID:              valueobjects.MapID(doc.ID),
		Name:            doc.Name,
		CreatedAt:       created,
		UpdatedAt:       updated,
		LayoutDirection: valueobjects.LayoutDirection(doc.LayoutDirection),
		Nodes:           make([]entities.Node, 0, len(doc.Nodes)),
		Edges:           make([]entities.Edge, 0, len(doc.Edges)),
	}
	for _, n := range doc.Nodes {
		m.Nodes = append(m.Nodes, entities.Node{
			ID:       valueobjects.NodeID(n.ID),
			Content:  n.Content,
			Position: valueobjects.Position{X: n.X, Y: n.Y},
			Width:    n.Width,
			Height:   n.Height,
		})
	}
	for _, e := range doc.Edges {
		m.Edges = append(m.Edges, entities.Edge{
			ID:           valueobjects.EdgeID(e.ID),
			Source:       valueobjects.NodeID(e.Source),
			Target:       valueobjects.NodeID(e.Target),
			SourceHandle: valueobjects.Handle(e.SourceHandle),
			TargetHandle: valueobjects.Handle(e.TargetHandle),
			Label:        e.Label,
		})
	}
	return m, nil
}
