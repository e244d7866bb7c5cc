package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kanban/internal/models"
	"kanban/internal/storage"
)

type taskDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	ProjectID     primitive.ObjectID `bson:"project_id"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Status        string             `bson:"status"`
	Priority      string             `bson:"priority"`
	DueDate       time.Time          `bson:"dueDate"`
	BlockedReason string             `bson:"blockedReason,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d taskDoc) model() models.Task {
	return models.Task{
		ID:            d.ID.Hex(),
		ProjectID:     d.ProjectID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Status:        models.Status(d.Status),
		Priority:      models.Priority(d.Priority),
		DueDate:       d.DueDate.UTC(),
		BlockedReason: d.BlockedReason,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

var taskSortFields = map[storage.SortField]string{
	storage.SortCreatedAt: "createdAt",
	storage.SortUpdatedAt: "updatedAt",
	storage.SortDueDate:   "dueDate",
	storage.SortTitle:     "title",
	storage.SortStatus:    "status",
	storage.SortPriority:  "priority",
}

var groupFields = map[storage.GroupField]string{
	storage.GroupByStatus:    "$status",
	storage.GroupByPriority:  "$priority",
	storage.GroupByProjectID: "$project_id",
}

func taskFilter(f storage.TaskFilter) bson.M {
	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = string(*f.Status)
	}
	if f.Priority != nil {
		filter["priority"] = string(*f.Priority)
	}
	if f.ProjectID != "" {
		filter["project_id"] = objectID(f.ProjectID)
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	return filter
}

func (s *Store) FindTasks(ctx context.Context, filter storage.TaskFilter, order storage.Sort) ([]models.Task, error) {
	cur, err := s.tasks.Find(ctx, taskFilter(filter), findOptions(order, taskSortFields))
	if err != nil {
		return nil, wrap("find tasks", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode tasks", err)
	}

	out := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindTaskByID(ctx context.Context, id string) (models.Task, error) {
	var doc taskDoc
	if err := s.tasks.FindOne(ctx, bson.M{"_id": objectID(id)}).Decode(&doc); err != nil {
		return models.Task{}, wrap("find task", err)
	}
	return doc.model(), nil
}

func (s *Store) InsertTask(ctx context.Context, t models.Task) (models.Task, error) {
	now := storage.Now()
	doc := taskDoc{
		ID:            primitive.NewObjectID(),
		ProjectID:     objectID(t.ProjectID),
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		DueDate:       t.DueDate,
		BlockedReason: t.BlockedReason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return models.Task{}, wrap("insert task", err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateTaskByID(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	set := bson.M{"updatedAt": storage.Now()}
	unset := bson.M{}
	if patch.ProjectID != nil {
		set["project_id"] = objectID(*patch.ProjectID)
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.DueDate != nil {
		set["dueDate"] = *patch.DueDate
	}
	if patch.BlockedReason != nil {
		if *patch.BlockedReason == "" {
			unset["blockedReason"] = ""
		} else {
			set["blockedReason"] = *patch.BlockedReason
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var doc taskDoc
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID(id)},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.Task{}, wrap("update task", err)
	}
	return doc.model(), nil
}

func (s *Store) DeleteTaskByID(ctx context.Context, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": objectID(id)})
	if err != nil {
		return wrap("delete task", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountTasks(ctx context.Context, filter storage.TaskFilter) (int64, error) {
	n, err := s.tasks.CountDocuments(ctx, taskFilter(filter))
	if err != nil {
		return 0, wrap("count tasks", err)
	}
	return n, nil
}

func (s *Store) GroupCountTasks(ctx context.Context, filter storage.TaskFilter, field storage.GroupField) (map[string]int64, error) {
	key, ok := groupFields[field]
	if !ok {
		return nil, fmt.Errorf("group tasks: unsupported field %q", field)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: taskFilter(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: key},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrap("group tasks", err)
	}

	var rows []struct {
		ID    any   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrap("decode groups", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		switch v := r.ID.(type) {
		case primitive.ObjectID:
			counts[v.Hex()] = r.Count
		case string:
			counts[v] = r.Count
		default:
			counts[fmt.Sprint(v)] = r.Count
		}
	}
	return counts, nil
}
