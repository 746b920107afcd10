// Package docs registers the OpenAPI document served at /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"204": {"description": "No Content"}}}},
        "/posts/timeline": {"get": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Timeline", "parameters": [{"type": "string", "description": "followed or all", "name": "scope", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PostView"}}}}}},
        "/posts/all": {"get": {"tags": ["posts"], "summary": "All posts", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PostView"}}}}}},
        "/posts/user/{userId}": {"get": {"tags": ["posts"], "summary": "Posts by user", "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PostView"}}}, "404": {"description": "Not Found"}}}},
        "/posts": {"post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Create post", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PostView"}}}}},
        "/posts/{postId}/likes": {"get": {"tags": ["likes"], "summary": "Like status of a post", "parameters": [{"type": "integer", "name": "postId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LikeState"}}, "404": {"description": "Not Found"}}}},
        "/likes/add": {"post": {"security": [{"BearerAuth": []}], "tags": ["likes"], "summary": "Like a post", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LikeState"}}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/likes/remove": {"post": {"security": [{"BearerAuth": []}], "tags": ["likes"], "summary": "Unlike a post", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LikeState"}}}}},
        "/follows/{userId}": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["follows"], "summary": "Follow a user", "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["follows"], "summary": "Unfollow a user", "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/follows/{userId}/status": {"get": {"security": [{"BearerAuth": []}], "tags": ["follows"], "summary": "Follow status", "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/users/suggest": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Suggest users", "parameters": [{"type": "string", "name": "query", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.UserSuggestion"}}}}}},
        "/users/{userId}": {"get": {"tags": ["users"], "summary": "User profile", "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserProfile"}}, "404": {"description": "Not Found"}}}},
        "/users/me": {"put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}},
        "/ws/ticket": {"post": {"security": [{"BearerAuth": []}], "tags": ["realtime"], "summary": "Issue websocket ticket", "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "models.PostView": {"type": "object", "properties": {"postId": {"type": "integer"}, "content": {"type": "string"}, "relativeTime": {"type": "string"}, "userId": {"type": "integer"}, "userName": {"type": "string"}, "loginId": {"type": "string"}, "likeCount": {"type": "integer"}, "likedByLoginUser": {"type": "boolean"}}},
        "models.LikeState": {"type": "object", "properties": {"liked": {"type": "boolean"}, "likeCount": {"type": "integer"}}},
        "models.UserSuggestion": {"type": "object", "properties": {"userId": {"type": "integer"}, "userName": {"type": "string"}, "loginId": {"type": "string"}, "followedByLoginUser": {"type": "boolean"}, "isSelf": {"type": "boolean"}, "followingLoginUser": {"type": "boolean"}}},
        "models.UserProfile": {"type": "object", "properties": {"userId": {"type": "integer"}, "userName": {"type": "string"}, "loginId": {"type": "string"}, "userBio": {"type": "string"}, "postCount": {"type": "integer"}, "followingCount": {"type": "integer"}, "followerCount": {"type": "integer"}, "likedPostCount": {"type": "integer"}, "followedByLoginUser": {"type": "boolean"}, "isSelf": {"type": "boolean"}}},
        "models.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "string"}, "details": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Kumatter API",
	Description:      "Short-post social network: timelines, likes and follows.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
