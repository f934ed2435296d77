// Package devserver is an in-memory implementation of the bookshelf REST API.
//
// It issues HS256 access tokens and opaque refresh tokens that rotate on
// every use, and counts refresh calls so tests can assert on them. It backs
// cmd/devserver and the client integration tests; it is not meant for
// production use.
//
// Routes
//
//	POST /auth/register     {email, password, name}  -> 201 {access_token, refresh_token, user}
//	POST /auth/login        {email, password}        -> 200 {access_token, refresh_token, user}
//	POST /auth/refresh      {refresh_token}          -> 200 {access_token, refresh_token}
//	POST /auth/logout       {refresh_token}          -> 204
//	GET  /users/me                                   -> 200 user
//	GET  /books?search&page&limit                    -> 200 {items, page, limit, total}
//	GET  /books/{id}                                 -> 200 book
//	POST /books             multipart(title, author, description, file) -> 201 book
//	POST /books/{id}/ratings {rating}                -> 200 book
//	POST /books/{id}/chat    {question}              -> 200 {answer}
//
// Errors are JSON objects {code, message}.
package devserver
