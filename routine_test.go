package main

import (
	"fmt"
	"testing"

	"fitlog-backend/models"
	"fitlog-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squatRoutine(name string) services.RoutineInput {
	return services.RoutineInput{
		Name: name,
		Exercises: []services.ExerciseInput{
			{Name: "Squat", Sets: 5, RepLower: 5, RepUpper: 5, Weight: 100},
			{Name: "Bench", Sets: 3, RepLower: 8, RepUpper: 12, Weight: 60},
		},
	}
}

func TestRoutines_CRUD(t *testing.T) {
	srv, db := setupTestServer(t)
	_, token := createTestUser(t, db, "Alice", "alice@test.com")

	var created models.Routine
	t.Run("Создание программы", func(t *testing.T) {
		resp, body := doRequest(t, srv.app, "POST", "/api/routines", squatRoutine("Leg day"), token)
		require.Equal(t, 201, resp.StatusCode)
		decodeData(t, body, &created)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Leg day", created.Name)
		assert.Len(t, created.Exercises, 2)
	})

	t.Run("Список программ", func(t *testing.T) {
		resp, body := doRequest(t, srv.app, "GET", "/api/routines", nil, token)
		require.Equal(t, 200, resp.StatusCode)

		var routines []models.Routine
		decodeData(t, body, &routines)
		require.Len(t, routines, 1)
		assert.Equal(t, "Squat", routines[0].Exercises[0].Name)
	})

	t.Run("Замена программы", func(t *testing.T) {
		in := services.RoutineInput{
			Name:      "Upper",
			Exercises: []services.ExerciseInput{{Name: "Press", Sets: 3, RepLower: 6, RepUpper: 8, Weight: 40}},
		}
		resp, body := doRequest(t, srv.app, "PUT", fmt.Sprintf("/api/routines/%d", created.ID), in, token)
		require.Equal(t, 200, resp.StatusCode)

		var updated models.Routine
		decodeData(t, body, &updated)
		assert.Equal(t, "Upper", updated.Name)
		require.Len(t, updated.Exercises, 1)
		assert.Equal(t, "Press", updated.Exercises[0].Name)
	})

	t.Run("Удаление программы", func(t *testing.T) {
		resp, _ := doRequest(t, srv.app, "DELETE", fmt.Sprintf("/api/routines/%d", created.ID), nil, token)
		assert.Equal(t, 200, resp.StatusCode)

		resp, _ = doRequest(t, srv.app, "GET", fmt.Sprintf("/api/routines/%d", created.ID), nil, token)
		assert.Equal(t, 404, resp.StatusCode)

		var count int64
		db.Model(&models.Exercise{}).Count(&count)
		assert.Zero(t, count)
	})
}

func TestRoutines_Validation(t *testing.T) {
	srv, db := setupTestServer(t)
	_, token := createTestUser(t, db, "Alice", "alice@test.com")

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "Пустое название", body: squatRoutine("  ")},
		{name: "Без упражнений", body: services.RoutineInput{Name: "Empty"}},
		{name: "Нижняя граница больше верхней", body: services.RoutineInput{
			Name:      "Bad reps",
			Exercises: []services.ExerciseInput{{Name: "Curl", Sets: 3, RepLower: 12, RepUpper: 8}},
		}},
		{name: "Отрицательный вес", body: services.RoutineInput{
			Name:      "Bad weight",
			Exercises: []services.ExerciseInput{{Name: "Curl", Sets: 3, RepLower: 8, RepUpper: 12, Weight: -5}},
		}},
		{name: "Неверный JSON", body: "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, srv.app, "POST", "/api/routines", tt.body, token)
			assert.Equal(t, 400, resp.StatusCode)
			assert.False(t, body.Success)
		})
	}
}

func TestRoutines_ForeignRoutine(t *testing.T) {
	srv, db := setupTestServer(t)
	_, aliceToken := createTestUser(t, db, "Alice", "alice@test.com")
	_, bobToken := createTestUser(t, db, "Bob", "bob@test.com")

	resp, body := doRequest(t, srv.app, "POST", "/api/routines", squatRoutine("Leg day"), aliceToken)
	require.Equal(t, 201, resp.StatusCode)
	var created models.Routine
	decodeData(t, body, &created)

	path := fmt.Sprintf("/api/routines/%d", created.ID)

	resp, _ = doRequest(t, srv.app, "GET", path, nil, bobToken)
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = doRequest(t, srv.app, "PUT", path, squatRoutine("Stolen"), bobToken)
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = doRequest(t, srv.app, "DELETE", path, nil, bobToken)
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = doRequest(t, srv.app, "GET", "/api/routines/abc", nil, aliceToken)
	assert.Equal(t, 400, resp.StatusCode)
}
